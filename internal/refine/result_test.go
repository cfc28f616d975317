package refine

import "testing"

func TestParseResult(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Result
		wantErr bool
	}{
		{
			name: "full object",
			body: `{"originalText":"salaam","refinedText":"Hello.","detectedLanguage":"Urdu"}`,
			want: Result{OriginalText: "salaam", RefinedText: "Hello.", DetectedLanguage: "Urdu"},
		},
		{
			name: "empty object defaults",
			body: `{}`,
			want: Result{OriginalText: "", RefinedText: "", DetectedLanguage: "Unknown"},
		},
		{
			name: "partial object",
			body: `{"refinedText":"Done."}`,
			want: Result{RefinedText: "Done.", DetectedLanguage: "Unknown"},
		},
		{
			name: "null and empty fields default",
			body: `{"originalText":null,"refinedText":"x","detectedLanguage":""}`,
			want: Result{RefinedText: "x", DetectedLanguage: "Unknown"},
		},
		{
			name: "scalar fields are coerced",
			body: `{"originalText":42,"refinedText":true,"detectedLanguage":"English"}`,
			want: Result{OriginalText: "42", RefinedText: "true", DetectedLanguage: "English"},
		},
		{
			name: "extra fields ignored",
			body: `{"refinedText":"a","confidence":0.9}`,
			want: Result{RefinedText: "a", DetectedLanguage: "Unknown"},
		},
		{
			name: "non-object JSON decodes as empty",
			body: `["a","b"]`,
			want: Result{DetectedLanguage: "Unknown"},
		},
		{
			name: "fenced JSON",
			body: "```json\n{\"refinedText\":\"fenced\",\"detectedLanguage\":\"Hindi\"}\n```",
			want: Result{RefinedText: "fenced", DetectedLanguage: "Hindi"},
		},
		{
			name: "bare fence",
			body: "```\n{\"refinedText\":\"bare\"}\n```",
			want: Result{RefinedText: "bare", DetectedLanguage: "Unknown"},
		},
		{
			name: "surrounding whitespace",
			body: "\n  {\"detectedLanguage\":\"English\"}  \n",
			want: Result{DetectedLanguage: "English"},
		},
		{name: "not json", body: "not json", wantErr: true},
		{name: "empty body", body: "", wantErr: true},
		{name: "whitespace body", body: "   \n", wantErr: true},
		{name: "null body", body: "null", wantErr: true},
		{name: "truncated object", body: `{"originalText":"abc"`, wantErr: true},
		{name: "trailing garbage", body: `{} trailing`, wantErr: true},
		{name: "stray closing brace", body: `{"refinedText":"ok"}}`, wantErr: true},
		{name: "stray closing bracket", body: `[1]]`, wantErr: true},
		{name: "second value", body: `{} {}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResult(%q) error = %v, wantErr %v", tt.body, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseResult(%q) = %+v, want %+v", tt.body, got, tt.want)
			}
		})
	}
}

func TestParseResultDefaultingIsIdempotent(t *testing.T) {
	first, err := ParseResult(`{}`)
	if err != nil {
		t.Fatalf("ParseResult({}) error = %v", err)
	}
	second, err := ParseResult(`{}`)
	if err != nil {
		t.Fatalf("ParseResult({}) error = %v", err)
	}
	if first != second {
		t.Errorf("ParseResult({}) not stable: %+v vs %+v", first, second)
	}
	want := Result{OriginalText: "", RefinedText: "", DetectedLanguage: "Unknown"}
	if first != want {
		t.Errorf("ParseResult({}) = %+v, want %+v", first, want)
	}
}
