package categorize

import "regexp"

// aspectVerbs maps inflected forms to a lemma; irregular forms are listed explicitly
var aspectVerbs = map[string]string{
	"sign": "sign", "signs": "sign", "signed": "sign", "signing": "sign",
	"drafted": "draft", "drafting": "draft",
	"write": "write", "wrote": "write", "written": "write", "writing": "write",
	"pay": "pay", "paid": "pay", "paying": "pay",
	"send": "send", "sent": "send", "sending": "send",
	"receive": "receive", "received": "receive", "receiving": "receive",
	"transferred": "transfer",
	"deliver": "deliver", "delivered": "deliver",
	"buy": "buy", "bought": "buy",
	"sell": "sell", "sold": "sell",
	"give": "give", "gave": "give", "given": "give",
	"take": "take", "took": "take", "taken": "take",
	"meet": "meet", "met": "meet",
	"leave": "leave", "left": "leave",
	"make": "make", "made": "make",
	"lend": "lend", "lent": "lend",
	"borrow": "borrow", "borrowed": "borrow",
	"owe": "owe", "owed": "owe",
	"earn": "earn", "earned": "earn",
	"spend": "spend", "spent": "spend",
	"cost": "cost", "costs": "cost",
	"charged": "charge",
	"prepare": "prepare", "prepared": "prepare",
	"issued": "issue",
	"execute": "execute", "executed": "execute",
	"approve": "approve", "approved": "approve",
	"filed": "file",
	"submit": "submit", "submitted": "submit",
	"hire": "hire", "hired": "hire",
	"fired": "fire",
	"attend": "attend", "attended": "attend",
	"arrive": "arrive", "arrived": "arrive",
	"move": "move", "moved": "move",
	"live": "live", "lived": "live",
	"worked": "work",
	"called": "call",
	"build": "build", "built": "build",
	"opened": "open",
	"closed": "close",
	"cancel": "cancel", "cancelled": "cancel", "canceled": "cancel",
	"terminate": "terminate", "terminated": "terminate",
	"witnessed": "witness",
	"forge": "forge", "forged": "forge",
}

// modifiers carry qualifier meaning, never object identity
var modifiers = map[string]bool{
	"total": true, "overall": true, "altogether": true, "originally": true, "finally": true,
	"initially": true, "eventually": true, "before": true, "after": true, "later": true,
	"first": true, "end": true, "entire": true, "whole": true, "part": true, "portion": true,
	"itemized": true, "itemised": true, "each": true, "only": true, "just": true,
	"lifetime": true, "behind": true, "still": true, "remaining": true,
}

var (
	totalPattern = regexp.MustCompile(`\b(?:total|in\s+total|altogether|overall|sum\s+of|in\s+all)\b`)

	creationPattern = regexp.MustCompile(`\b(?:drafted|drafts?|wrote|written|created|made|prepared|produced|issued|composed|drew\s+up|drawn\s+up)\b`)

	persistencePattern = regexp.MustCompile(`\b(?:left\s+behind|left|remaining|remained|remains?|survived|surviving|still\s+(?:had|has|exist(?:s|ed)?|held|valid)|in\s+force|outstanding|on\s+file|at\s+(?:the\s+time\s+of\s+)?(?:his|her|their)?\s*death)\b`)

	hedgePattern = regexp.MustCompile(`\b(?:i\s+think|i\s+believe|i\s+guess|maybe|perhaps|probably|possibly|approximately|roughly|if\s+i\s+remember(?:\s+correctly)?|as\s+far\s+as\s+i\s+(?:recall|remember)|i'?m\s+not\s+sure|i\s+am\s+not\s+sure|it\s+seems|apparently|more\s+or\s+less)\b`)
)

var qualifierPairs = []termPair{
	{left: word(`before`), right: word(`after`)},
	{left: word(`originally`), right: word(`finally`)},
	{left: word(`initially`), right: word(`eventually`)},
	{left: word(`at\s+first`), right: word(`in\s+the\s+end`)},
	{left: word(`(?:originally|initially|at\s+first)`), right: word(`(?:later|afterwards|subsequently)`)},
}

var scopePairs = []termPair{
	{left: word(`all`), right: word(`(?:part|partly|partial|partially|some\s+of)`)},
	{left: word(`(?:total|in\s+total|overall|altogether)`), right: word(`(?:itemi[sz]ed|each|per\s+item|breakdown)`)},
	{left: word(`(?:entire|whole)`), right: word(`(?:portion|part)`)},
}

func word(expr string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + expr + `\b`)
}
