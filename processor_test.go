package tablesaf

import (
	"context"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestProcessorProcessFile(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(DefaultConfig(), nil)

	t.Run("csv end to end", func(t *testing.T) {
		content := []byte("Report generated 2024-06-01,\nCategory,Value\nWidgets,\"1,200.50\"\nGadgets,300\n")

		result, err := p.ProcessFile(ctx, "data.csv", content)
		if err != nil {
			t.Fatalf("ProcessFile() error = %v", err)
		}
		if len(result.Tables) != 1 {
			t.Fatalf("tables = %d, want 1", len(result.Tables))
		}
		table := result.Tables[0]
		want := []string{"Category", "Value"}
		if !reflect.DeepEqual(table.ColumnNames(), want) {
			t.Errorf("columns = %v, want %v", table.ColumnNames(), want)
		}
		if table.Rows() != 2 {
			t.Errorf("rows = %d, want 2", table.Rows())
		}
		if table.Columns[1].Kind != ColumnNumeric {
			t.Errorf("Value kind = %v, want numeric", table.Columns[1].Kind)
		}
	})

	t.Run("html narrative block filtered out", func(t *testing.T) {
		// A layout table with no numbers anywhere is not a data table.
		content := []byte(`<html><body><table>
			<tr><td>left nav</td><td>main content</td></tr>
			<tr><td>footer</td><td>contact us</td></tr>
		</table></body></html>`)

		result, err := p.ProcessFile(ctx, "page.html", content)
		if err != nil {
			t.Fatalf("ProcessFile() error = %v", err)
		}
		if len(result.Tables) != 0 {
			t.Errorf("tables = %d, want 0 (no-digit block rejected)", len(result.Tables))
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		if _, err := p.ProcessFile(ctx, "image.png", []byte{0x89}); err == nil {
			t.Error("expected error for unsupported document type")
		}
	})
}

func TestProcessorMetricsOption(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProcessor(DefaultConfig(), nil,
		WithProcessorMetrics(NewMetrics(reg)))

	_, err := p.ProcessFile(context.Background(), "data.csv",
		[]byte("Name,Value\na,1\nb,2\n"))
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "tablesaf_tables_sanitized_total" {
			found = true
			if v := f.GetMetric()[0].GetCounter().GetValue(); v != 1 {
				t.Errorf("tables_sanitized = %v, want 1", v)
			}
		}
	}
	if !found {
		t.Error("tablesaf_tables_sanitized_total not registered")
	}
}

func TestProcessorCustomRegistry(t *testing.T) {
	registry := NewSourceRegistry()
	registry.Register(&CSVSource{})
	p := NewProcessor(DefaultConfig(), nil, WithRegistry(registry))

	if _, err := p.ProcessFile(context.Background(), "page.html", []byte("<html></html>")); err == nil {
		t.Error("custom registry without HTML source must reject HTML input")
	}
}
