package detect

import (
	"regexp"
	"strings"
	"unicode"
)

// actionForms maps English past-tense verb forms to an action key
var actionForms = map[string]string{
	"signed": "sign", "drafted": "draft", "wrote": "write", "written": "write",
	"sent": "send", "paid": "pay", "transferred": "transfer", "delivered": "deliver",
	"received": "receive", "prepared": "prepare", "approved": "approve",
	"handed": "hand", "gave": "give", "given": "give", "took": "take", "taken": "take",
	"forged": "forge", "submitted": "submit", "filed": "file", "hired": "hire",
	"fired": "fire", "bought": "buy", "sold": "sell", "repaired": "repair",
	"built": "build", "called": "call", "invited": "invite", "issued": "issue",
	"executed": "execute", "witnessed": "witness", "cancelled": "cancel",
	"canceled": "cancel", "terminated": "terminate",
}

// actionPast is the simple past of each action key, for rendering questions
var actionPast = map[string]string{
	"sign": "signed", "draft": "drafted", "write": "wrote", "send": "sent",
	"pay": "paid", "transfer": "transferred", "deliver": "delivered",
	"receive": "received", "prepare": "prepared", "approve": "approved",
	"hand": "handed", "give": "gave", "take": "took", "forge": "forged",
	"submit": "submitted", "file": "filed", "hire": "hired", "fire": "fired",
	"buy": "bought", "sell": "sold", "repair": "repaired", "build": "built",
	"call": "called", "invite": "invited", "issue": "issued",
	"execute": "executed", "witness": "witnessed", "cancel": "cancelled",
	"terminate": "terminated",
}

// pronouns may co-refer with any named actor
var pronouns = map[string]string{
	"i": "i", "me": "i",
	"he": "he", "him": "he",
	"she": "she", "her": "she",
	"we": "we", "us": "we",
	"they": "they", "them": "they",
	"you": "you",
}

// determiners introduce a role noun used as an actor ("the defendant", "my brother")
var determiners = map[string]bool{
	"the": true, "my": true, "his": true, "her": true, "our": true, "their": true, "your": true,
}

// passiveAux before a verb makes it passive
var passiveAux = map[string]bool{
	"was": true, "were": true, "been": true, "is": true, "are": true, "be": true, "being": true, "got": true,
}

// skipBeforeVerb are auxiliaries and adverbs between an actor and its verb
var skipBeforeVerb = map[string]bool{
	"had": true, "has": true, "have": true, "also": true, "personally": true,
	"himself": true, "herself": true, "myself": true, "themselves": true, "then": true,
	"later": true, "already": true, "allegedly": true, "actually": true, "both": true,
	"first": true, "eventually": true, "finally": true, "originally": true,
}

// negations before a verb turn an action claim into a denial
var negations = map[string]bool{
	"not": true, "never": true, "didn't": true, "didn’t": true, "no": true, "hasn't": true, "hadn't": true,
}

// sentenceWords are capitalized words that are never names
var sentenceWords = map[string]bool{
	"the": true, "a": true, "an": true, "on": true, "in": true, "at": true, "after": true,
	"before": true, "then": true, "when": true, "this": true, "that": true, "it": true,
	"there": true, "mr": true, "mrs": true, "ms": true, "dr": true, "adv": true,
}

// eventNouns are occasions someone can attend
var eventNouns = map[string]bool{
	"meeting": true, "hearing": true, "signing": true, "ceremony": true, "funeral": true,
	"wedding": true, "conversation": true, "negotiation": true, "session": true,
	"party": true, "closing": true, "inspection": true, "visit": true, "dinner": true,
	"conference": true, "trial": true, "interview": true, "event": true, "mediation": true,
	"deposition": true, "appointment": true, "gathering": true,
}

// documentNouns are documents whose existence can be disputed (stemmed)
var documentNouns = map[string]bool{
	"agreement": true, "contract": true, "will": true, "testament": true, "letter": true,
	"receipt": true, "invoice": true, "deed": true, "lease": true, "memo": true,
	"memorandum": true, "email": true, "note": true, "cheque": true, "check": true,
	"certificate": true, "permit": true, "license": true, "licence": true,
	"protocol": true, "minute": true, "document": true, "record": true, "bill": true,
	"statement": true, "report": true, "affidavit": true, "power": true,
}

// months maps English month names and abbreviations to month numbers
var months = map[string]int{
	"january": 1, "jan": 1, "february": 2, "feb": 2, "march": 3, "mar": 3,
	"april": 4, "apr": 4, "may": 5, "june": 6, "jun": 6, "july": 7, "jul": 7,
	"august": 8, "aug": 8, "september": 9, "sep": 9, "sept": 9, "october": 10, "oct": 10,
	"november": 11, "nov": 11, "december": 12, "dec": 12,
}

// numberWords covers small counts written out
var numberWords = map[string]float64{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
	"eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// caseNumberPatterns match case and docket numbers that look like dates or amounts
var caseNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3,6}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b(?:case|file|docket|matter|appeal|claim)\s*(?:no\.?|number|#)\s*:?\s*[\w./-]*\d[\w./-]*`),
	regexp.MustCompile(`(?:תיק|ת"א|תא"מ|ע"א|בש"א|ה"פ|ת"ק)\s*(?:מס['׳]?\s*)?\d[\d./-]*`),
}

// maskCaseNumbers blanks out case and docket references before value extraction.
// "2021-05-20" has the shape of a case number but is kept as an ISO date.
func maskCaseNumbers(text string) string {
	for _, re := range caseNumberPatterns {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			if looksISO(m) {
				return m
			}
			return strings.Repeat(" ", len(m))
		})
	}
	return text
}

func looksISO(m string) bool {
	parts := strings.Split(m, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return false
	}
	_, ok := validDate(atoi(parts[0]), atoi(parts[1]), atoi(parts[2]))
	return ok && (strings.HasPrefix(parts[0], "19") || strings.HasPrefix(parts[0], "20"))
}

// word is a token with its original surface form
type word struct {
	text  string // as written
	lower string
	start int
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'’]*`)

func words(text string) []word {
	locs := wordPattern.FindAllStringIndex(text, -1)
	out := make([]word, len(locs))
	for i, l := range locs {
		w := text[l[0]:l[1]]
		out[i] = word{text: w, lower: strings.ToLower(w), start: l[0]}
	}
	return out
}

func capitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}
