package urlutil

import "testing"

func TestSearchURL(t *testing.T) {
	tests := []struct {
		template, q, want string
	}{
		{"https://www.larebajavirtual.com/{q}?_q={q}&map=ft", "7702418000100", "https://www.larebajavirtual.com/7702418000100?_q=7702418000100&map=ft"},
		{"https://www.drogueriascafam.com.co/#2fce/fullscreen/m=and&q={q}", " 75916565 ", "https://www.drogueriascafam.com.co/#2fce/fullscreen/m=and&q=75916565"},
		{"https://www.cruzverde.com.co/search?query={q}", "bion 3", "https://www.cruzverde.com.co/search?query=bion%203"},
	}
	for _, tt := range tests {
		if got := SearchURL(tt.template, tt.q); got != tt.want {
			t.Errorf("SearchURL(%q, %q) = %q, want %q", tt.template, tt.q, got, tt.want)
		}
	}
}

func TestHost(t *testing.T) {
	if got := Host("https://WWW.Olimpica.com/x?y=1"); got != "olimpica.com" {
		t.Errorf("Host = %q", got)
	}
	if !IsHTTP("https://www.olimpica.com/") || IsHTTP("/relative") {
		t.Error("IsHTTP misclassified")
	}
}
