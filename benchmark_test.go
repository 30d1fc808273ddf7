package fieldseal

import (
	"log/slog"
	"strings"
	"testing"
)

func benchEngine(b *testing.B) *Engine {
	b.Helper()
	engine, err := New(
		WithSecret("benchmark-secret"),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		b.Fatal(err)
	}
	return engine
}

func BenchmarkEncrypt_Short(b *testing.B) {
	engine := benchEngine(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Encrypt("alice@example.com")
	}
}

func BenchmarkEncrypt_4KB(b *testing.B) {
	engine := benchEngine(b)
	plaintext := strings.Repeat("x", 4096)
	b.SetBytes(int64(len(plaintext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Encrypt(plaintext)
	}
}

func BenchmarkDecrypt_Short(b *testing.B) {
	engine := benchEngine(b)
	envelope := engine.Encrypt("alice@example.com")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Decrypt(envelope)
	}
}

func BenchmarkComputeBlindIndex(b *testing.B) {
	engine := benchEngine(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ComputeBlindIndex("alice@example.com")
	}
}

func BenchmarkApplyOnWrite(b *testing.B) {
	engine := benchEngine(b)
	sensitive := []string{"name", "email", "phone", "address"}
	indexed := []string{"email"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		record := Record{
			"name":    "Alice Example",
			"email":   "alice@example.com",
			"phone":   "+1-555-123-4567",
			"address": "1 Main St, Springfield",
		}
		engine.ApplyOnWrite(record, sensitive, indexed)
	}
}
