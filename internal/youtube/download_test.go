package youtube

import (
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://example.com/video.mp4", "", true},
		{"short", "", true},
	}

	for _, tt := range tests {
		got, err := ExtractVideoID(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ExtractVideoID(%q): ожидалась ошибка", tt.url)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, %v; ожидалось %q", tt.url, got, err, tt.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Artist - Song", "Artist - Song"},
		{`AC/DC: "Live" <1991>?`, "AC_DC_ _Live_ _1991__"},
		{"  пробелы  ", "пробелы"},
		{"///", "___"},
		{"", "audio"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.name); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, ожидалось %q", tt.name, got, tt.want)
		}
	}

	long := strings.Repeat("я", 300)
	if got := []rune(SanitizeFileName(long)); len(got) != 200 {
		t.Errorf("Длинное имя должно обрезаться до 200 символов, получено %d", len(got))
	}
}

func TestFindBestAudioFormat(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, AudioChannels: 2, Bitrate: 500000},
		{ItagNo: 139, MimeType: `audio/mp4; codecs="mp4a.40.5"`, AudioChannels: 2, Bitrate: 48000},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, Bitrate: 160000},
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000},
	}

	best := findBestAudioFormat(formats)
	if best == nil || best.ItagNo != 251 {
		t.Errorf("Ожидался формат 251, получено %+v", best)
	}

	// Без отдельных аудиодорожек берется видео со звуком
	videoOnly := youtube.FormatList{formats[3], formats[0]}
	if best := findBestAudioFormat(videoOnly); best == nil || best.ItagNo != 18 {
		t.Errorf("Ожидался формат 18, получено %+v", best)
	}

	if best := findBestAudioFormat(youtube.FormatList{formats[3]}); best != nil {
		t.Errorf("Без звука формат не должен находиться, получено %+v", best)
	}
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		`audio/mp4; codecs="mp4a.40.2"`: ".m4a",
		`audio/webm; codecs="opus"`:     ".weba",
		`video/mp4; codecs="avc1"`:      ".mp4",
		"application/octet-stream":      ".bin",
	}
	for mime, want := range tests {
		if got := extensionFor(mime); got != want {
			t.Errorf("extensionFor(%q) = %q, ожидалось %q", mime, got, want)
		}
	}
}
