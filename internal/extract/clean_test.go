package extract

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Pikachu", "Pikachu"},
		{"surrounding whitespace", "  Eevee \t", "Eevee"},
		{"ideographic space", "Pika　chu", "Pika chu"},
		{"leading digits", "123Pikachu", "Pikachu"},
		{"leading underscores", "__Eevee", "Eevee"},
		{"leading punctuation and emoji", "✨→ Mew", "Mew"},
		{"leading mix before accented letter", "1. Émolga", "Émolga"},
		{"double quoted nickname", `Corsola "Sparkles"`, "Corsola"},
		{"curly quoted nickname", "Corsola “Sparkles”", "Corsola"},
		{"single quoted nickname", "Corsola 'Sparkles'", "Corsola"},
		{"apostrophe name loses tail", "Farfetch'd", "Farfetch"},
		{"parenthetical", "Eevee (shiny)", "Eevee"},
		{"spaced hyphen", "Mew - keeper", "Mew"},
		{"unspaced hyphen", "Ho-Oh", "Ho"},
		{"em dash", "Mew — rare", "Mew"},
		{"en dash", "Mew – rare", "Mew"},
		{"slash", "Mew / trade", "Mew"},
		{"gift from clause", "Togepi gift from Misty", "Togepi"},
		{"fs clause", "Pichu fs", "Pichu"},
		{"ft clause", "Abra ft Kadabra", "Abra"},
		{"giveaway clause", "Azurill giveaway", "Azurill"},
		{"clause uppercase", "Togepi GIFT FROM Brock", "Togepi"},
		{"ft inside word untouched", "Dratini drafts", "Dratini drafts"},
		{"trailing bullet", "Eevee •", "Eevee"},
		{"trailing angle bracket", "Mew>", "Mew"},
		{"trailing bracket salad", "Abra]»", "Abra"},
		{"whitespace collapse", "Mr.   Mime", "Mr. Mime"},
		{"internal newline collapsed", "Mew\nTwo", "Mew Two"},
		{"period kept", "Mime Jr.", "Mime Jr."},
		{"decomposed accents composed", "Flabébé", "Flabébé"},
		{"empty", "", ""},
		{"only digits", "12345", ""},
		{"only symbols", "✨✨✨", ""},
		{"only removable clause", "gift from Ash", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Pikachu",
		"  123__✨ Corsola \"Sparkles\" (shiny) - fs gift from Ash •  ",
		"Ho-Oh",
		"Farfetch'd",
		"Flabébé",
		"Mr.　 Mime",
		"✨✨✨",
		"",
		"Togepi giveaway > <",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestClean_StepOrder(t *testing.T) {
	// The quote cut runs before the parenthesis and separator cuts, and the
	// note clause only fires on what is left after those.
	tests := []struct {
		in   string
		want string
	}{
		{`Eevee (fs) "nick"`, "Eevee"},
		{`Eevee "nick" (fs)`, "Eevee"},
		{"Eevee - gift from Ash", "Eevee"},
		{"gift from Ash - Eevee", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
