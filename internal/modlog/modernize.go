package modlog

import (
	"regexp"
	"strings"

	"github.com/JetOU777/Pokemon-Showdown/pkg/id"
)

// linePrefix matches the "[timestamp] (roomid) " prefix shared by every
// historical and canonical line.
var linePrefix = regexp.MustCompile(`^\[.+?\] \(.+?\) `)

// The historical free-text phrasings. Each rule pairs a capture regexp with a
// renderer producing the canonical remainder of the line. Order matters: the
// first matching rule wins, mirroring the sequence the legacy logs were
// produced in.
var modernizeRules = []struct {
	re     *regexp.Regexp
	render func(m []string) string
}{
	{
		regexp.MustCompile(`\[(.*?)\] was promoted to (.*?) by \[(.*?)\]`),
		func(m []string) string {
			return rankAction(m[2]) + ": [" + m[1] + "] by " + m[3]
		},
	},
	{
		regexp.MustCompile(`\[(.*?)\] was demoted to (.*?) by \[(.*?)\]`),
		func(m []string) string {
			return rankAction(m[2]) + ": [" + m[1] + "] by " + m[3] + ": (demote)"
		},
	},
	{
		regexp.MustCompile(`\[(.*?)\] was appointed Room Owner by \[(.*?)\]`),
		func(m []string) string {
			return "ROOMOWNER: [" + m[1] + "] by " + m[2]
		},
	},
	{
		regexp.MustCompile(`\[(.*?)\] set modchat to (.*)`),
		func(m []string) string {
			return "MODCHAT: by " + m[1] + ": " + m[2]
		},
	},
	{
		regexp.MustCompile(`(.*) set modjoin to (.*)`),
		func(m []string) string {
			if strings.HasPrefix(m[2], "sync") {
				return "MODJOIN SYNC: by " + id.Normalize(m[1])
			}
			return "MODJOIN: by " + id.Normalize(m[1]) + ": " + m[2]
		},
	},
	{
		regexp.MustCompile(`\[(.*?)\] notes: (.*)`),
		func(m []string) string {
			return "NOTE: by " + m[1] + ": " + m[2]
		},
	},
	{
		regexp.MustCompile(`\[(.*?)\].*changed the roomintro`),
		func(m []string) string { return "ROOMINTRO: by " + m[1] },
	},
	{
		regexp.MustCompile(`\[(.*?)\].*changed the staffintro`),
		func(m []string) string { return "STAFFINTRO: by " + m[1] },
	},
	{
		regexp.MustCompile(`\[(.*?)\].*deleted the roomintro`),
		func(m []string) string { return "DELETEROOMINTRO: by " + m[1] },
	},
	{
		regexp.MustCompile(`\[(.*?)\].*delete the staffintro`),
		func(m []string) string { return "STAFFINTRODELETE: by " + m[1] },
	},
	{
		regexp.MustCompile(`\[(.*?)\] changed the roomdesc to: "(.*)"\.`),
		func(m []string) string {
			return "ROOMDESC: by " + m[1] + `: to "` + m[2] + `"`
		},
	},
	{
		regexp.MustCompile(`(.*) declared (.*)`),
		func(m []string) string {
			return "DECLARE: by " + id.Normalize(m[1]) + ": " + m[2]
		},
	},
	{
		regexp.MustCompile(`(.*) added a roomevent titled "(.*)"\.`),
		func(m []string) string {
			return "ROOMEVENT: by " + id.Normalize(m[1]) + `: added "` + m[2] + `"`
		},
	},
	{
		regexp.MustCompile(`(.*) removed a roomevent titled "(.*)"\.`),
		func(m []string) string {
			return "ROOMEVENT: by " + id.Normalize(m[1]) + `: removed "` + m[2] + `"`
		},
	},
	{
		regexp.MustCompile(`\[(.*?)\] created a tournament in (.*) format\.`),
		func(m []string) string {
			return "TOUR CREATE: by " + m[1] + ": " + m[2]
		},
	},
}

// Modernize rewrites a historical free-text line into the canonical grammar.
// Lines already canonical, or phrasings with no rewrite rule, pass through
// unchanged. A line without the standard prefix passes through as well.
func Modernize(line string) string {
	prefix := linePrefix.FindString(line)
	if prefix == "" {
		return line
	}
	body := line[len(prefix):]
	// Very old lines wrap the whole message in parentheses.
	if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		body = body[1 : len(body)-1]
	}
	for _, rule := range modernizeRules {
		if m := rule.re.FindStringSubmatch(body); m != nil {
			return prefix + rule.render(m)
		}
	}
	return line
}

// rankAction canonicalizes a rank phrase into an action name: the first space
// is dropped and the rest uppercased, so "Room Driver" becomes "ROOMDRIVER".
func rankAction(rank string) string {
	return strings.ToUpper(strings.Replace(rank, " ", "", 1))
}
