package services

import "testing"

func TestFormatMoney_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"zero", "0", "$0.00"},
		{"small integer", "5", "$5.00"},
		{"with decimals", "42.5", "$42.50"},
		{"hundreds", "999.99", "$999.99"},
		{"thousands", "1234.56", "$1,234.56"},
		{"ten thousands", "12345", "$12,345.00"},
		{"hundred thousands", "123456.78", "$123,456.78"},
		{"millions", "1234567.89", "$1,234,567.89"},
		{"rounds half up", "0.005", "$0.01"},
		{"negative", "-250000.5", "-$250,000.50"},
		{"negative rounds to zero", "-0.001", "$0.00"},
		{"exact thousands boundary", "1000", "$1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMoney(dec(tt.input))
			if got != tt.expect {
				t.Errorf("FormatMoney(%s) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestApplyThousandsGrouping(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"5", "5"},
		{"42", "42"},
		{"999", "999"},
		{"1234", "1,234"},
		{"12345", "12,345"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"1234567890", "1,234,567,890"},
	}

	for _, tt := range tests {
		if got := applyThousandsGrouping(tt.input); got != tt.expect {
			t.Errorf("applyThousandsGrouping(%q) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}
