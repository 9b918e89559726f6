package adapter

import (
	"encoding/json"
	"testing"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "just text", "just text"},
		{"tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"script and style removed", "<style>.x{}</style>Keep<script>alert(1)</script> this", "Keep this"},
		{"multiline script", "A<SCRIPT type=\"x\">\nvar a = '<p>';\n</SCRIPT>B", "A B"},
		{"whitespace collapsed", "  a\n\n\tb  ", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlainText_DoubleEncoded(t *testing.T) {
	got := PlainText("&lt;p&gt;R&amp;amp;D &amp;lt;team&amp;gt;&lt;/p&gt;")
	if got != "R&D <team>" {
		t.Errorf("unexpected %q", got)
	}
}

func TestClassifyBoard(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/1", "linkedin"},
		{"https://de.indeed.com/viewjob", "indeed"},
		{"https://www.xing.com/jobs/x", "xing"},
		{"https://www.naukri.com/job", "naukri"},
		{"https://www.stepstone.de/x", "stepstone"},
		{"https://jobs.smartrecruiters.com/acme/1", "smartrecruiters"},
		{"https://boards.greenhouse.io/acme", "greenhouse"},
		{"https://jobs.lever.co/acme", "lever"},
		{"https://acme.teamtailor.com/jobs/1", "teamtailor"},
		{"https://acme.recruitee.com/o/x", "recruitee"},
		{"https://jobs.ashbyhq.com/acme", "ashby"},
		{"https://Careers.Acme.example/jobs", "careers.acme.example"},
		{"not a url", "web"},
		{"", "web"},
	}
	for _, tt := range tests {
		if got := ClassifyBoard(tt.url); got != tt.want {
			t.Errorf("ClassifyBoard(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
	if got := WithBoard("serpapi-job-boards", "https://de.indeed.com/x"); got != "serpapi-job-boards:indeed" {
		t.Errorf("unexpected WithBoard %q", got)
	}
}

func TestLenientJSON(t *testing.T) {
	var v struct {
		A text `json:"a"`
		B text `json:"b"`
		C text `json:"c"`
		D text `json:"d"`
		E flag `json:"e"`
		F flag `json:"f"`
	}
	err := json.Unmarshal([]byte(`{"a": " x ", "b": 42, "c": null, "d": {"nested": 1}, "e": "true", "f": 1}`), &v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A.String() != "x" || v.B.String() != "42" || v.C.String() != "" || v.D.String() != "" {
		t.Errorf("unexpected text values %+v", v)
	}
	if !bool(v.E) || bool(v.F) {
		t.Errorf("unexpected flag values %v %v", v.E, v.F)
	}
}

func TestList(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}
	if got := list[item](json.RawMessage(`[{"id": 1}]`), "jobs"); len(got) != 1 {
		t.Errorf("bare array: got %v", got)
	}
	if got := list[item](json.RawMessage(`{"jobs": [{"id": 1}, {"id": 2}]}`), "jobs"); len(got) != 2 {
		t.Errorf("wrapped: got %v", got)
	}
	if got := list[item](json.RawMessage(`"nope"`), "jobs"); got != nil {
		t.Errorf("invalid: got %v", got)
	}
}
