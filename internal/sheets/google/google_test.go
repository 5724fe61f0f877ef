package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finreport/internal/core"
	"finreport/internal/log"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"}, log.Discard())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	got, err := credentialsJSON(Config{ServiceAccountJSON: ` {"type":"service_account"} `})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("inline: got %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = credentialsJSON(Config{ServiceAccountFile: path})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Errorf("file: got %q, %v", got, err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	if _, err := credentialsJSON(Config{}); err != nil {
		t.Errorf("ADC fallback: %v", err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err = credentialsJSON(Config{})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected missing credentials error, got %v", err)
	}

	if _, err := credentialsJSON(Config{ServiceAccountFile: filepath.Join(t.TempDir(), "nope.json")}); err == nil {
		t.Error("expected error for unreadable file")
	}
}

func TestClientRequiresService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetBase: DefaultSheetName, logger: log.Discard()}

	if _, err := c.WriteReport(context.Background(), core.MonthlyReport{Period: core.NewPeriod(0, 2024)}); err == nil {
		t.Error("expected validation error for month 0")
	}
	if _, err := c.WriteReport(context.Background(), core.MonthlyReport{Period: core.NewPeriod(1, 2024)}); err == nil {
		t.Error("expected error without a service")
	}
	if _, err := c.ReadReports(context.Background(), 2024); err == nil {
		t.Error("expected error without a service")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Reports", "2024 Reports"},
		{"  Reports ", "2024 Reports"},
		{"2023 Reports", "2023 Reports"},
		{"1234Reports", "2024 1234Reports"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, 2024); got != tt.want {
				t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}
