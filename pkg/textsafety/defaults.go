package textsafety

// DefaultLeetMap covers the common digit/symbol substitutions seen in
// usernames. Substitution is per-character and context-free.
var DefaultLeetMap = map[rune]rune{
	'4': 'a',
	'@': 'a',
	'3': 'e',
	'1': 'i',
	'!': 'i',
	'0': 'o',
	'$': 's',
	'5': 's',
	'7': 't',
	'+': 't',
}

// DefaultRestrictedTerms are proper nouns and religious terms the app
// protects from casual or disrespectful use in usernames. Checked before
// the general blacklist with their own rejection message.
var DefaultRestrictedTerms = []string{
	"allah",
	"allahu",
	"quran",
	"kuran",
	"muhammad",
	"muhammed",
	"peygamber",
	"prophet",
	"ayet",
	"sura",
	"sure",
	"hadis",
	"hadith",
	"bismillah",
}

// DefaultBlacklist is the general profanity list for the app's Turkish and
// English speaking audience. Entries are lowercase [a-z] tokens so they
// match both the raw lowercased input and the normalized form.
var DefaultBlacklist = []string{
	// English
	"fuck",
	"shit",
	"bitch",
	"bastard",
	"asshole",
	"dick",
	"cunt",
	"whore",
	"slut",
	"nigger",
	"faggot",
	// Turkish
	"amcik",
	"orospu",
	"pezevenk",
	"yarrak",
	"sikerim",
	"siktir",
	"gavat",
	"kahpe",
	"ibne",
	"salak",
	"gerizekali",
}

// DefaultConfig returns the production username policy.
func DefaultConfig() Config {
	return Config{
		MinLength:       3,
		MaxLength:       20,
		RestrictedTerms: DefaultRestrictedTerms,
		Blacklist:       DefaultBlacklist,
		LeetMap:         DefaultLeetMap,
	}
}
