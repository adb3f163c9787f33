package services

import (
	"testing"
)

func TestGeneratePDF_Quote(t *testing.T) {
	result, err := GeneratePDF(sampleExportData())
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) < 5 {
		t.Fatalf("GeneratePDF() returned %d bytes", len(result))
	}
	// PDF files start with %PDF
	if string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGeneratePDF_EmptyItems(t *testing.T) {
	data := sampleExportData()
	data.Rows = nil
	data.Company = CompanyInfo{}

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}

func TestGeneratePDF_ManyItems(t *testing.T) {
	data := sampleExportData()
	base := data.Rows[0]
	data.Rows = nil
	for i := 1; i <= 80; i++ {
		r := base
		r.Index = i
		data.Rows = append(data.Rows, r)
	}
	data.Approved = true

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}

func TestValidUntilLabel(t *testing.T) {
	if got := validUntilLabel(ExportData{}); got != "" {
		t.Errorf("validUntilLabel(empty) = %q, want empty", got)
	}
	if got := validUntilLabel(ExportData{ValidUntil: "31/03/2026"}); got != "Valid until: 31/03/2026" {
		t.Errorf("validUntilLabel() = %q", got)
	}
}
