package assistant

import "testing"

func TestParseReplyExtractsSentinelAndQuickReplies(t *testing.T) {
	raw := "Great, I found some openings for you.\n[SHOW_JOBS]\n[QUICK_REPLIES: Show more jobs | Highest paying jobs | Start over]"

	reply := parseReply(raw)

	if !reply.showJobs {
		t.Fatal("expected showJobs to be set")
	}
	if reply.text != "Great, I found some openings for you." {
		t.Fatalf("markup not stripped: %q", reply.text)
	}
	if len(reply.quickActions) != 3 {
		t.Fatalf("expected 3 quick actions, got %d", len(reply.quickActions))
	}
	if reply.quickActions[0].Label != "Show more jobs" || reply.quickActions[0].Query != "Show more jobs" {
		t.Fatalf("unexpected first action: %+v", reply.quickActions[0])
	}
}

func TestParseReplyQuestionTurn(t *testing.T) {
	raw := "What kind of work are you looking for?\n[QUICK_REPLIES: Healthcare | Education | Any field]"

	reply := parseReply(raw)

	if reply.showJobs {
		t.Fatal("question turn must not show jobs")
	}
	if reply.text != "What kind of work are you looking for?" {
		t.Fatalf("unexpected text: %q", reply.text)
	}
	if len(reply.quickActions) != 3 {
		t.Fatalf("expected 3 quick actions, got %d", len(reply.quickActions))
	}
}

func TestParseReplyPlainText(t *testing.T) {
	reply := parseReply("Just a plain answer.")

	if reply.showJobs || len(reply.quickActions) != 0 {
		t.Fatalf("plain text should carry no markup, got %+v", reply)
	}
	if reply.text != "Just a plain answer." {
		t.Fatalf("unexpected text: %q", reply.text)
	}
}

func TestParseReplySkipsEmptyOptions(t *testing.T) {
	reply := parseReply("Pick one.\n[QUICK_REPLIES: A | | B |]")

	if len(reply.quickActions) != 2 {
		t.Fatalf("empty options should be dropped, got %+v", reply.quickActions)
	}
}

func TestParseReplyCollectsAllQuickReplyBlocks(t *testing.T) {
	raw := "Pick a path.\n[QUICK_REPLIES: Healthcare | Education]\n[QUICK_REPLIES: Start over]"

	reply := parseReply(raw)

	if len(reply.quickActions) != 3 {
		t.Fatalf("expected options from both blocks, got %+v", reply.quickActions)
	}
	if reply.quickActions[2].Label != "Start over" {
		t.Fatalf("second block lost: %+v", reply.quickActions)
	}
	if reply.text != "Pick a path." {
		t.Fatalf("markup not fully stripped: %q", reply.text)
	}
}

func TestParseReplyInlineSentinel(t *testing.T) {
	reply := parseReply("Here you go [SHOW_JOBS] enjoy.")

	if !reply.showJobs {
		t.Fatal("expected showJobs to be set")
	}
	if reply.text != "Here you go  enjoy." {
		t.Fatalf("unexpected text: %q", reply.text)
	}
}
