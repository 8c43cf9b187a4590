package moderation

// Profane terms checked by substring containment against normalized content.
// Normalization strips everything outside a-z and whitespace, so entries
// must themselves be plain lowercase Latin; non-Latin-script terms would
// never match and are carried here only in transliterated form.
var denylist = []string{
	// English
	"fuck", "shit", "damn", "bitch", "asshole", "bastard", "crap", "piss",
	// Spanish
	"mierda", "joder", "puta", "cabron", "pendejo", "cono",
	// French
	"merde", "putain", "connard", "salope",
	// German
	"scheisse", "arschloch", "verdammt",
	// Italian
	"merda", "cazzo", "stronzo",
	// Portuguese
	"caralho", "porra",
	// Russian (transliterated)
	"blyad", "suka", "pizdec",
	// Hindi (transliterated)
	"madarchod", "bhenchod", "chutiya",
	// Arabic (transliterated)
	"khawal", "sharmouta",
}
