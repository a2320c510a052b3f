package validator

import (
	"reflect"
	"strings"
	"testing"
)

func kinds(issues []Issue) []Kind {
	out := make([]Kind, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Kind)
	}
	return out
}

func findIssue(issues []Issue, kind Kind) (Issue, bool) {
	for _, i := range issues {
		if i.Kind == kind {
			return i, true
		}
	}
	return Issue{}, false
}

func TestValidateReservedName(t *testing.T) {
	t.Parallel()

	issues := Validate("C:/media/CON.mp4")
	issue, ok := findIssue(issues, KindReservedName)
	if !ok {
		t.Fatalf("Validate() = %v, want a reserved name issue", issues)
	}
	if issue.Name != "CON" {
		t.Errorf("reserved Name = %q, want CON", issue.Name)
	}
	if _, ok := findIssue(issues, KindInvalidCharacters); ok {
		t.Error("drive colon outside the file name was reported as invalid")
	}
}

func TestValidateTrailingSpaceBeforeExtension(t *testing.T) {
	t.Parallel()

	issues := Validate("/media/movie .mp4")
	if !reflect.DeepEqual(kinds(issues), []Kind{KindTrailingPeriodOrSpace}) {
		t.Errorf("Validate() kinds = %v, want only trailing period or space", kinds(issues))
	}
}

func TestValidateInvalidCharacters(t *testing.T) {
	t.Parallel()

	issues := Validate("/media/a:b?c.mkv")
	issue, ok := findIssue(issues, KindInvalidCharacters)
	if !ok {
		t.Fatalf("Validate() = %v, want invalid characters", issues)
	}
	if want := []string{":", "?"}; !reflect.DeepEqual(issue.Characters, want) {
		t.Errorf("Characters = %v, want %v", issue.Characters, want)
	}
}

func TestValidateRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want []Kind
	}{
		{"clean", "/media/Movies/Film (2020).mkv", []Kind{}},
		{"every invalid character", `/m/a<b>c"d|e*f\g.mp4`, []Kind{KindInvalidCharacters}},
		{"control character", "/m/bad\x07name.mp4", []Kind{KindControlCharacters}},
		{"tab is a control character", "/m/a\tb.mp4", []Kind{KindControlCharacters}},
		{"trailing period", "/m/movie.", []Kind{KindTrailingPeriodOrSpace}},
		{"trailing space after extension", "/m/movie.mp4 ", []Kind{KindTrailingPeriodOrSpace, KindPaddedSegment}},
		{"reserved lower case", "/m/lpt9.avi", []Kind{KindReservedName}},
		{"reserved without extension", "/m/nul", []Kind{KindReservedName}},
		{"reserved prefix only", "/m/CONSOLE.mp4", []Kind{}},
		{"COM0 is allowed", "/m/COM0.mp4", []Kind{}},
		{"dot file is not reserved", "/m/.CON", []Kind{}},
		{"padded directory", "/media/ Shows /ep.mkv", []Kind{KindPaddedSegment}},
		{"leading space in file name", "/media/ ep.mkv", []Kind{KindPaddedSegment}},
		{
			name: "many at once",
			path: "/m/ AUX. ",
			want: []Kind{KindTrailingPeriodOrSpace, KindPaddedSegment},
		},
		{
			name: "all evaluated",
			path: "/m/x:\x01 .mp4",
			want: []Kind{KindInvalidCharacters, KindControlCharacters, KindTrailingPeriodOrSpace},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := kinds(Validate(tt.path)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidateLengths(t *testing.T) {
	t.Parallel()

	longName := strings.Repeat("a", 252) + ".mkv" // 256 runes
	issues := Validate("/media/" + longName)

	nameIssue, ok := findIssue(issues, KindNameTooLong)
	if !ok || nameIssue.Length != 256 {
		t.Errorf("name issue = %+v, want length 256", nameIssue)
	}
	pathIssue, ok := findIssue(issues, KindPathTooLong)
	if !ok || pathIssue.Length != 263 {
		t.Errorf("path issue = %+v, want length 263", pathIssue)
	}

	fits := strings.Repeat("a", 251) + ".mkv" // 255 runes
	if issues := Validate(fits); len(issues) != 0 {
		t.Errorf("Validate(255 runes) = %v, want none", issues)
	}

	deep := "/" + strings.Repeat("d/", 130) + "f.mp4" // 266 runes
	if _, ok := findIssue(Validate(deep), KindPathTooLong); !ok {
		t.Error("long path not reported")
	}
}

func TestValidateCountsRunes(t *testing.T) {
	t.Parallel()

	name := strings.Repeat("é", 200) + ".mkv" // 204 runes, 404 bytes
	if issues := Validate("/m/" + name); len(issues) != 0 {
		t.Errorf("Validate() = %v, want none", issues)
	}
}

func TestValidateAllOnlyIncludesIssues(t *testing.T) {
	t.Parallel()

	results := ValidateAll([]string{"/m/ok.mp4", "/m/CON.mp4", "/m/a?.mkv"})

	if _, ok := results["/m/ok.mp4"]; ok {
		t.Error("clean path included in results")
	}
	if want := []string{"/m/CON.mp4", "/m/a?.mkv"}; !reflect.DeepEqual(results.Paths(), want) {
		t.Errorf("Paths() = %v, want %v", results.Paths(), want)
	}

	counts := results.CountByKind()
	if counts[KindReservedName] != 1 || counts[KindInvalidCharacters] != 1 {
		t.Errorf("CountByKind() = %v", counts)
	}
}

func TestIssueString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		issue Issue
		want  string
	}{
		{Issue{Kind: KindInvalidCharacters, Characters: []string{":", "?"}}, "Contains invalid characters: :, ?"},
		{Issue{Kind: KindReservedName, Name: "CON"}, "Uses reserved Windows name: CON"},
		{Issue{Kind: KindNameTooLong, Length: 300}, "Filename too long (300 > 255 characters)"},
		{Issue{Kind: KindPathTooLong, Length: 261}, "Full path too long (261 > 260 characters)"},
		{Issue{Kind: KindPaddedSegment, Segment: " x"}, "Path component has leading/trailing spaces: ' x'"},
	}

	for _, tt := range tests {
		if got := tt.issue.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSplitExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, stem, ext string
	}{
		{"movie.mp4", "movie", ".mp4"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"noext", "noext", ""},
		{".hidden", ".hidden", ""},
		{"..dots", "..dots", ""},
		{".hidden.mkv", ".hidden", ".mkv"},
		{"trailing.", "trailing", "."},
		{"", "", ""},
	}

	for _, tt := range tests {
		stem, ext := splitExt(tt.in)
		if stem != tt.stem || ext != tt.ext {
			t.Errorf("splitExt(%q) = (%q, %q), want (%q, %q)", tt.in, stem, ext, tt.stem, tt.ext)
		}
	}
}
