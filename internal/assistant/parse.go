package assistant

import (
	"regexp"
	"strings"
)

// showJobsMarker is the in-band token the model emits once all profiling
// slots are filled. It must be stripped before the text is shown.
const showJobsMarker = "[SHOW_JOBS]"

var quickRepliesPattern = regexp.MustCompile(`\[QUICK_REPLIES:([^\]]*)\]`)

type parsedReply struct {
	text         string
	showJobs     bool
	quickActions []QuickAction
}

// parseReply extracts the sentinel and quick-reply markup from generated
// text, leaving only the user-visible message.
func parseReply(raw string) parsedReply {
	var reply parsedReply

	text := raw
	// Every block contributes options; all of them are stripped.
	for _, m := range quickRepliesPattern.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(m[1], "|") {
			option := strings.TrimSpace(part)
			if option == "" {
				continue
			}
			reply.quickActions = append(reply.quickActions, QuickAction{
				Label: option,
				Query: option,
			})
		}
	}
	text = quickRepliesPattern.ReplaceAllString(text, "")

	if strings.Contains(text, showJobsMarker) {
		reply.showJobs = true
		text = strings.ReplaceAll(text, showJobsMarker, "")
	}

	reply.text = tidyText(text)
	return reply
}

// tidyText collapses the blank lines left behind by stripped markup.
func tidyText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimRight(line, " \t"); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
