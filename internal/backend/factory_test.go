package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"finreport/internal/config"
	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDirectory: "d"})
	if err != nil || cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" {
		t.Errorf("got %+v, %v", cfg, err)
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	bills := `[{"id":"1","name":"Rent","amount_min":"900","amount_max":"900","date":"2024-01-01","repeat_freq":"monthly","skip":0,"active":true}]`
	if err := os.WriteFile(filepath.Join(dir, "bills.json"), []byte(bills), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	got, err := res.Backend.ActiveBills(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "Rent" {
		t.Errorf("ActiveBills() = %+v, %v", got, err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	txs, err := res.Backend.TransactionsForPeriod(context.Background(), core.NewPeriod(1, 2024))
	if err != nil || len(txs) != 0 {
		t.Errorf("empty database: %+v, %v", txs, err)
	}
}

func TestCreateBackendInvalid(t *testing.T) {
	f := NewFactory(log.Discard())
	if _, err := f.CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("expected error for missing database path")
	}
}

func TestCreateSinksWithoutOptionalServices(t *testing.T) {
	res := CreateSinks(context.Background(), &config.Config{}, log.Discard())
	if len(res.Sinks) != 0 {
		t.Errorf("got %d sinks, want 0", len(res.Sinks))
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestWriterSink(t *testing.T) {
	store := memory.New()
	sink := WriterSink{Label: "memory", Writer: store}
	if err := sink.Send(context.Background(), core.MonthlyReport{Period: core.NewPeriod(2, 2024)}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if store.Writes() != 1 || sink.Name() != "memory" {
		t.Errorf("writes = %d, name = %s", store.Writes(), sink.Name())
	}
}
