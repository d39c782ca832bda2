package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelReplyFencedJSON(t *testing.T) {
	raw := "Sure, here is my advice:\n```json\n{\"text\": \"Pair the blue jacket with white sneakers.\", \"related_item_ids\": [\"item_01\", \"item_02\"]}\n```\nHope that helps!"
	reply := ParseModelReply(raw)
	require.NotNil(t, reply)
	assert.Equal(t, "Pair the blue jacket with white sneakers.", reply.Text)
	assert.Equal(t, []string{"item_01", "item_02"}, reply.RelatedItemIDs)
}

func TestParseModelReplyBareJSONWithProse(t *testing.T) {
	raw := "Of course! {\"text\": \"Go with the linen shirt.\", \"related_item_ids\": [\"item_03\"]} Let me know."
	reply := ParseModelReply(raw)
	assert.Equal(t, "Go with the linen shirt.", reply.Text)
	assert.Equal(t, []string{"item_03"}, reply.RelatedItemIDs)
}

func TestParseModelReplyNoRecoverableJSON(t *testing.T) {
	raw := "I could not produce structured output this time, sorry."
	reply := ParseModelReply(raw)
	assert.Equal(t, raw, reply.Text)
	assert.Equal(t, []string{}, reply.RelatedItemIDs)
}

func TestParseModelReplyBrokenBraces(t *testing.T) {
	// braces present but interior is not a JSON object
	raw := "try {this} outfit {today}"
	reply := ParseModelReply(raw)
	assert.Equal(t, raw, reply.Text)
	assert.Empty(t, reply.RelatedItemIDs)
}

func TestParseModelReplyMissingIDsDefaultsEmpty(t *testing.T) {
	reply := ParseModelReply(`{"text": "Minimal reply"}`)
	assert.Equal(t, "Minimal reply", reply.Text)
	assert.Equal(t, []string{}, reply.RelatedItemIDs)
}

func TestParseModelReplyIdempotentOnPlainText(t *testing.T) {
	raw := "Just wear whatever feels right today."
	first := ParseModelReply(raw)
	second := ParseModelReply(first.Text)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.RelatedItemIDs, second.RelatedItemIDs)
}
