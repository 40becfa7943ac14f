package security

import "testing"

// TestTextSanitizer_StripsTags はHTMLタグがタグごと除去されることをテストする。
func TestTextSanitizer_StripsTags(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "ノルウェー産アトランティックサーモン",
			want:  "ノルウェー産アトランティックサーモン",
		},
		{
			name:  "scriptタグは本体ごと除去",
			input: `サーモン<script>alert("xss")</script>`,
			want:  "サーモン",
		},
		{
			name:  "装飾タグはテキストのみ残す",
			input: "<b>特選</b>マグロ",
			want:  "特選マグロ",
		},
		{
			name:  "前後の空白を除去",
			input: "  エビフライ  ",
			want:  "エビフライ",
		},
		{
			name:  "空文字列は空文字列",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestTextSanitizer_Idempotent は同一入力に対して常に同一出力を返すことをテストする。
func TestTextSanitizer_Idempotent(t *testing.T) {
	s := NewTextSanitizer()
	input := `<p>揚げ物<script>x</script></p>`

	first := s.Sanitize(input)
	second := s.Sanitize(first)
	if first != second {
		t.Errorf("冪等性がない: first=%q second=%q", first, second)
	}
}
