package vdf_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/calvinalkan/overbuddy/internal/vdf"
)

func navigate(t *testing.T, doc string, path vdf.KeyPath) vdf.Block {
	t.Helper()

	blk, ok, err := vdf.Navigate(doc, path)
	if err != nil {
		t.Fatalf("Navigate(%s): %v", path, err)
	}

	if !ok {
		t.Fatalf("Navigate(%s): not found", path)
	}

	return blk
}

func TestRead_Returns_Direct_Child_Only(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	blk := navigate(t, doc, appPath)

	got, ok := vdf.Read(doc, blk, "LaunchOptions")
	if !ok {
		t.Fatal("LaunchOptions not found")
	}

	if got != "--old" {
		t.Fatalf("LaunchOptions=%q, want=%q", got, "--old")
	}

	cloud := navigate(t, doc, appPath.Append("cloud"))

	if got, _ := vdf.Read(doc, cloud, "LaunchOptions"); got != "nested" {
		t.Fatalf("cloud LaunchOptions=%q, want=%q", got, "nested")
	}
}

func TestRead_Missing_And_Block_Keys(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	blk := navigate(t, doc, appPath)

	if got, ok := vdf.Read(doc, blk, "Playtime"); ok {
		t.Fatalf("Playtime=%q, want absent", got)
	}

	if got, ok := vdf.Read(doc, blk, "cloud"); ok {
		t.Fatalf("cloud=%q, want absent (it is a block)", got)
	}

	if got, ok := vdf.Read(doc, blk, "launchoptions"); ok {
		t.Fatalf("launchoptions=%q, want absent (keys are case-sensitive)", got)
	}
}

func TestLocate_Span_Covers_Value_Text(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	blk := navigate(t, doc, appPath)

	span, ok, err := vdf.Locate(doc, blk, "LastPlayed")
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}

	if got := doc[span.Start:span.End]; got != "1712345678" {
		t.Fatalf("span text=%q, want=%q", got, "1712345678")
	}

	if doc[span.Start-1] != '"' || doc[span.End] != '"' {
		t.Fatalf("span %+v is not bounded by quotes", span)
	}
}

func TestWrite_Replaces_Existing_Value_In_Place(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	blk := navigate(t, doc, appPath)

	got, err := vdf.Write(doc, blk, "LaunchOptions", "--bg 5")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := strings.Replace(doc, "\"LaunchOptions\"\t\t\"--old\"", "\"LaunchOptions\"\t\t\"--bg 5\"", 1)
	if got != want {
		t.Fatalf("unexpected document:\n%s", got)
	}

	if !strings.Contains(got, "\"LaunchOptions\"\t\t\"nested\"") {
		t.Fatal("nested LaunchOptions was modified")
	}

	if !strings.Contains(got, "\"LaunchOptions\"\t\t\"--decoy\"") {
		t.Fatal("decoy LaunchOptions was modified")
	}
}

func TestWrite_Inserts_Missing_Key_After_Opening_Brace(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(loadFixture(t), "\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--old\"\n", "", 1)
	blk := navigate(t, doc, appPath)

	got, err := vdf.Write(doc, blk, "LaunchOptions", "--bg 5")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	line := "\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--bg 5\"\n"
	want := doc[:blk.Start+2] + line + doc[blk.Start+2:]

	if got != want {
		t.Fatalf("unexpected document:\n%s", got)
	}

	blk = navigate(t, got, appPath)
	if v, _ := vdf.Read(got, blk, "LaunchOptions"); v != "--bg 5" {
		t.Fatalf("read back %q, want %q", v, "--bg 5")
	}
}

func TestWrite_Insert_Keeps_Line_Endings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "lf",
			doc:  "\"a\"\n{\n\t\"b\"\n\t{\n\t}\n}\n",
			want: "\"a\"\n{\n\t\"b\"\n\t{\n\t\t\"k\"\t\t\"v\"\n\t}\n}\n",
		},
		{
			name: "crlf",
			doc:  "\"a\"\r\n{\r\n\t\"b\"\r\n\t{\r\n\t}\r\n}\r\n",
			want: "\"a\"\r\n{\r\n\t\"b\"\r\n\t{\r\n\t\t\"k\"\t\t\"v\"\r\n\t}\r\n}\r\n",
		},
		{
			name: "inline brace",
			doc:  "\"a\"\n{\n\t\"b\" { }\n}\n",
			want: "\"a\"\n{\n\t\"b\" {\n\t\t\"k\"\t\t\"v\"\n }\n}\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			blk := navigate(t, tc.doc, vdf.KeyPath{"a", "b"})

			got, err := vdf.Write(tc.doc, blk, "k", "v")
			if err != nil {
				t.Fatalf("Write: %v", err)
			}

			if got != tc.want {
				t.Fatalf("doc=%q, want=%q", got, tc.want)
			}
		})
	}
}

func TestWrite_Rejects(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	blk := navigate(t, doc, appPath)

	tests := []struct {
		name    string
		block   vdf.Block
		key     string
		value   string
		wantErr error
	}{
		{name: "unescaped quote", block: blk, key: "LaunchOptions", value: `say "hi"`, wantErr: vdf.ErrInvalidValue},
		{name: "newline", block: blk, key: "LaunchOptions", value: "a\nb", wantErr: vdf.ErrInvalidValue},
		{name: "trailing backslash", block: blk, key: "LaunchOptions", value: `C:\`, wantErr: vdf.ErrInvalidValue},
		{name: "key is a block", block: blk, key: "cloud", value: "x", wantErr: vdf.ErrNotScalar},
		{name: "insert at root", block: vdf.Root(doc), key: "Extra", value: "x", wantErr: vdf.ErrRootBlock},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := vdf.Write(doc, tc.block, tc.key, tc.value)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestWrite_Accepts_Escaped_Value(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	blk := navigate(t, doc, appPath)
	raw := `--title "a b" C:\games`

	got, err := vdf.Write(doc, blk, "LaunchOptions", vdf.Escape(raw))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	blk = navigate(t, got, appPath)

	stored, ok := vdf.Read(got, blk, "LaunchOptions")
	if !ok {
		t.Fatal("LaunchOptions not found after write")
	}

	if back := vdf.Unescape(stored); back != raw {
		t.Fatalf("Unescape(%q)=%q, want=%q", stored, back, raw)
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: `a"b`, want: `a\"b`},
		{in: `a\b`, want: `a\\b`},
		{in: "a\tb\nc", want: `a\tb\nc`},
	}

	for _, tc := range tests {
		if got := vdf.Escape(tc.in); got != tc.want {
			t.Errorf("Escape(%q)=%q, want=%q", tc.in, got, tc.want)
		}

		if got := vdf.Unescape(tc.want); got != tc.in {
			t.Errorf("Unescape(%q)=%q, want=%q", tc.want, got, tc.in)
		}
	}
}
