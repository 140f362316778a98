package tablesaf

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseMarkdownTable(t *testing.T) {
	t.Run("pipe table with header", func(t *testing.T) {
		src := `| Category | Value |
| --- | --- |
| Widgets | 100 |
| Gadgets | 200 |`

		grid, err := ParseMarkdownTable("doc.pdf", src)
		if err != nil {
			t.Fatalf("ParseMarkdownTable() error = %v", err)
		}
		if !reflect.DeepEqual(grid.Header, []string{"Category", "Value"}) {
			t.Errorf("Header = %v, want [Category Value]", grid.Header)
		}
		if grid.Rows() != 2 {
			t.Fatalf("rows = %d, want 2", grid.Rows())
		}
		if got := grid.At(0, 0).String(); got != "Widgets" {
			t.Errorf("At(0,0) = %q, want Widgets", got)
		}
		if c := grid.At(1, 1); c.Kind != CellNumber || c.Number != 200 {
			t.Errorf("At(1,1) = %+v, want number 200", c)
		}
	})

	t.Run("fenced table", func(t *testing.T) {
		src := "```markdown\n| A | B |\n| --- | --- |\n| 1 | 2 |\n```"

		grid, err := ParseMarkdownTable("doc.pdf", src)
		if err != nil {
			t.Fatalf("ParseMarkdownTable() error = %v", err)
		}
		if grid.Rows() != 1 {
			t.Errorf("rows = %d, want 1", grid.Rows())
		}
	})

	t.Run("surrounding prose ignored", func(t *testing.T) {
		src := `Here is the reconstructed table:

| X | Y |
| --- | --- |
| 1 | 2 |

Let me know if you need more.`

		grid, err := ParseMarkdownTable("doc.pdf", src)
		if err != nil {
			t.Fatalf("ParseMarkdownTable() error = %v", err)
		}
		if !reflect.DeepEqual(grid.Header, []string{"X", "Y"}) {
			t.Errorf("Header = %v, want [X Y]", grid.Header)
		}
	})

	t.Run("no table is an error", func(t *testing.T) {
		_, err := ParseMarkdownTable("doc.pdf", "I could not find any tabular data on this page.")
		if !errors.Is(err, ErrNoTable) {
			t.Errorf("error = %v, want ErrNoTable", err)
		}
	})

	t.Run("empty input is an error", func(t *testing.T) {
		if _, err := ParseMarkdownTable("doc.pdf", ""); !errors.Is(err, ErrNoTable) {
			t.Errorf("error = %v, want ErrNoTable", err)
		}
	})
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "| a |", "| a |"},
		{"plain fence", "```\n| a |\n```", "| a |"},
		{"language fence", "```markdown\n| a |\n```", "| a |"},
		{"whitespace around", "  \n```\n| a |\n```\n  ", "| a |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
