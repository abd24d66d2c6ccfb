package validate

import (
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   bool
		wantErr string
	}{
		{"empty", "", false, "Name is required"},
		{"whitespace only", "   ", false, "Name is required"},
		{"too short", "J", false, "Name must be at least 2 characters"},
		{"short after trim", "  J  ", false, "Name must be at least 2 characters"},
		{"minimum", "Jo", true, ""},
		{"hyphen and apostrophe", "Mary-Jane O'Neil", true, ""},
		{"fifty chars", strings.Repeat("a", 50), true, ""},
		{"fifty one chars", strings.Repeat("a", 51), false, "Name must be less than 50 characters"},
		{"digits", "Jo3", false, "Name can only contain letters, spaces, hyphens, and apostrophes"},
		{"markup", "<b>Jo</b>", false, "Name can only contain letters, spaces, hyphens, and apostrophes"},
		{"accented", "José", false, "Name can only contain letters, spaces, hyphens, and apostrophes"},
		{"trimmed before length", "  " + strings.Repeat("a", 50) + "  ", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Name(tt.input)
			if got.Valid != tt.valid {
				t.Errorf("Name(%q).Valid = %v, want %v", tt.input, got.Valid, tt.valid)
			}
			if got.Error != tt.wantErr {
				t.Errorf("Name(%q).Error = %q, want %q", tt.input, got.Error, tt.wantErr)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		input   string
		valid   bool
		wantErr string
	}{
		{"", false, "Email is required"},
		{"  ", false, "Email is required"},
		{"user@example.com", true, ""},
		{"  user@example.com  ", true, ""},
		{"a@b.com", true, ""},
		{"user@example", false, "Please provide a valid email address"},
		{"user example@x.com", false, "Please provide a valid email address"},
		{"user@@example.com", false, "Please provide a valid email address"},
		{"@example.com", false, "Please provide a valid email address"},
		{strings.Repeat("a", 95) + "@x.com", false, "Email must be less than 100 characters"},
	}

	for _, tt := range tests {
		got := Email(tt.input)
		if got.Valid != tt.valid || got.Error != tt.wantErr {
			t.Errorf("Email(%q) = %+v, want valid=%v error=%q", tt.input, got, tt.valid, tt.wantErr)
		}
	}
}

func TestEmailCaseInsensitive(t *testing.T) {
	inputs := []string{"USER@Example.com", "user@EXAMPLE", "NOT AN EMAIL", ""}
	for _, in := range inputs {
		upper := Email(in)
		lower := Email(strings.ToLower(in))
		if upper != lower {
			t.Errorf("Email(%q) = %+v, Email(lower) = %+v", in, upper, lower)
		}
	}
}

func TestPassword(t *testing.T) {
	const complexity = "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	tests := []struct {
		input   string
		valid   bool
		wantErr string
	}{
		{"", false, "Password is required"},
		{"Ab1", false, "Password must be at least 8 characters"},
		{"Passw0rd", true, ""},
		{"password", false, complexity},
		{"PASSWORD1", false, complexity},
		{"password1", false, complexity},
		{"Password", false, complexity},
		{"Sup3r" + strings.Repeat("x", 500), true, ""},
	}

	for _, tt := range tests {
		got := Password(tt.input)
		if got.Valid != tt.valid || got.Error != tt.wantErr {
			t.Errorf("Password(%q) = %+v, want valid=%v error=%q", tt.input, got, tt.valid, tt.wantErr)
		}
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		input    string
		valid    bool
		hasValue bool
		value    int
		wantErr  string
	}{
		{"", true, false, 0, ""},
		{"42", true, true, 42, ""},
		{"0", true, true, 0, ""},
		{"150", true, true, 150, ""},
		{"151", false, false, 0, "Age must be less than 150"},
		{"-1", false, false, 0, "Age cannot be negative"},
		{"12.5", false, false, 0, "Age must be a whole number"},
		{"abc", false, false, 0, "Age must be a valid number"},
		{"NaN", false, false, 0, "Age must be a valid number"},
		{"1e2", false, false, 0, "Age must be a valid number"},
		{"0x10", false, false, 0, "Age must be a valid number"},
		{"Inf", false, false, 0, "Age must be a valid number"},
		{"12.0", true, true, 12, ""},
		{" 9 ", true, true, 9, ""},
	}

	for _, tt := range tests {
		got := Age(tt.input)
		if got.Valid != tt.valid {
			t.Errorf("Age(%q).Valid = %v, want %v", tt.input, got.Valid, tt.valid)
		}
		if got.HasValue != tt.hasValue || got.Value != tt.value {
			t.Errorf("Age(%q) value = (%d, %v), want (%d, %v)", tt.input, got.Value, got.HasValue, tt.value, tt.hasValue)
		}
		if got.Error != tt.wantErr {
			t.Errorf("Age(%q).Error = %q, want %q", tt.input, got.Error, tt.wantErr)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  <script>hi</script>  "); got != "scripthi/script" {
		t.Errorf("SanitizeString = %q, want %q", got, "scripthi/script")
	}
	long := strings.Repeat("x", 150)
	if got := SanitizeString(long); len(got) != 100 {
		t.Errorf("len(SanitizeString(150 chars)) = %d, want 100", len(got))
	}
}

func TestSanitizeNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"", 0, false},
		{"abc", 0, false},
		{"42", 42, true},
		{"-3", -3, true},
		{"12abc", 12, true},
		{"  7 ", 7, true},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := SanitizeNumber(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("SanitizeNumber(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
