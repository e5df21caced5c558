package document

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
	}{
		{"", TypeEmpty},
		{"   ", TypeEmpty},
		{"45.5%", TypePercentage},
		{"12 %", TypePercentage},
		{"$1,200", TypeCurrency},
		{"€99", TypeCurrency},
		{"500 SAR", TypeCurrency},
		{"12/05/2024", TypeDate},
		{"2024-05-12", TypeDate},
		{"3 Mar 2024", TypeDate},
		{"Q2 2023", TypeDate},
		{"1234", TypeNumber},
		{"1,234.56", TypeNumber},
		{"-42", TypeNumber},
		{"-", TypeText},
		{"Riyadh", TypeText},
		{"SARDINE", TypeText},
	}
	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnit(t *testing.T) {
	tests := []struct {
		in   string
		dt   DataType
		want string
	}{
		{"45.5%", TypePercentage, "%"},
		{"$1,200", TypeCurrency, "$"},
		{"500 SAR", TypeCurrency, "SAR"},
		{"1234", TypeNumber, ""},
	}
	for _, tt := range tests {
		if got := Unit(tt.in, tt.dt); got != tt.want {
			t.Errorf("Unit(%q, %q) = %q, want %q", tt.in, tt.dt, got, tt.want)
		}
	}
}
