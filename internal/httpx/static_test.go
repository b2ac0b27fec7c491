package httpx

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/pharma-pricer/internal/page"
)

const catalogPage = `<html><body>
<ul>
  <li class="item"><span class="name">Dolex</span><button>Bogotá, D.C.</button></li>
  <li class="item"><span class="name">Advil</span></li>
</ul>
</body></html>`

func newSession(t *testing.T) *StaticSession {
	t.Helper()
	s := NewStaticSession(MapLoader{"https://shop.test/a": catalogPage}, t.TempDir())
	require.NoError(t, s.Navigate(context.Background(), "https://shop.test/a"))
	return s
}

func TestStaticSessionFind(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	items, err := s.FindAll(ctx, page.CSS("li.item"))
	require.NoError(t, err)
	require.Len(t, items, 2)

	name, err := items[1].Find(ctx, page.CSS("span.name"))
	require.NoError(t, err)
	txt, err := name.Text(ctx)
	require.NoError(t, err)
	require.Equal(t, "Advil", txt)

	_, err = items[1].Find(ctx, page.Tag("button"))
	require.ErrorIs(t, err, page.ErrNotFound)
}

func TestStaticSessionXPath(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	btn, err := s.WaitFor(ctx, page.XPath("//button[contains(., 'Bogot')]"), page.Clickable, 0)
	require.NoError(t, err)
	txt, err := btn.Text(ctx)
	require.NoError(t, err)
	require.Equal(t, "Bogotá, D.C.", txt)

	_, err = s.Find(ctx, page.XPath("//table"))
	require.ErrorIs(t, err, page.ErrNotFound)

	_, err = s.Find(ctx, page.XPath("//li["))
	require.Error(t, err)
	require.False(t, errors.Is(err, page.ErrNotFound))
}

func TestStaticSessionWaitsFailImmediately(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	_, err := s.WaitFor(ctx, page.ID("missing"), page.Present, 0)
	require.True(t, page.IsTimeout(err))

	_, err = s.WaitForAll(ctx, page.CSS("div.card"), 0)
	require.True(t, page.IsTimeout(err))
}

func TestStaticSessionMissingPageRendersEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewStaticSession(MapLoader{}, t.TempDir())

	require.NoError(t, s.Navigate(ctx, "https://shop.test/missing"))
	_, err := s.WaitFor(ctx, page.Tag("body"), page.Present, 0)
	require.NoError(t, err)
	_, err = s.WaitFor(ctx, page.CSS("li.item"), page.Present, 0)
	require.True(t, page.IsTimeout(err))
}

func TestStaticSessionRequiresDocument(t *testing.T) {
	s := NewStaticSession(MapLoader{}, t.TempDir())
	_, err := s.Find(context.Background(), page.Tag("body"))
	require.Error(t, err)
}

func TestStaticSessionSnapshot(t *testing.T) {
	s := newSession(t)

	path, err := s.Snapshot(context.Background(), "shop_1_error")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, catalogPage, string(data))
	require.NoError(t, s.Close())
}

type slowLoader struct{ MapLoader }

func (l slowLoader) Load(ctx context.Context, url string) ([]byte, error) {
	if _, ok := l.MapLoader[url]; !ok {
		return nil, context.DeadlineExceeded
	}
	return l.MapLoader.Load(ctx, url)
}

func TestStaticSessionFailedNavigateDropsPreviousPage(t *testing.T) {
	ctx := context.Background()
	s := NewStaticSession(slowLoader{MapLoader{"https://shop.test/a": catalogPage}}, t.TempDir())
	require.NoError(t, s.Navigate(ctx, "https://shop.test/a"))

	err := s.Navigate(ctx, "https://shop.test/slow")
	require.True(t, page.IsTimeout(err))

	path, err := s.Snapshot(ctx, "shop_2_error")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)

	_, err = s.Find(ctx, page.CSS("li.item"))
	require.Error(t, err)
}
