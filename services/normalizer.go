package services

import (
	"encoding/json"
	"regexp"

	"stylistapi/models"
)

var fencedJSONRule = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
var bareJSONRule = regexp.MustCompile(`(?s)\{.*\}`)

type normalizedReply struct {
	Text           string   `json:"text"`
	RelatedItemIDs []string `json:"related_item_ids"`
}

// ParseModelReply recovers the requested {text, related_item_ids} object from
// free-form model output. The model is only probabilistically schema compliant,
// so this tries a fenced ```json block first, then the widest brace-delimited
// substring, and finally degrades to the whole text as the reply body.
// It never fails.
func ParseModelReply(raw string) *models.ModelReply {
	if match := fencedJSONRule.FindStringSubmatch(raw); match != nil {
		if reply := decodeReply(match[1]); reply != nil {
			return reply
		}
	}
	if match := bareJSONRule.FindString(raw); match != "" {
		if reply := decodeReply(match); reply != nil {
			return reply
		}
	}
	return &models.ModelReply{Text: raw, RelatedItemIDs: []string{}}
}

func decodeReply(blob string) *models.ModelReply {
	var parsed normalizedReply
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		return nil
	}
	ids := parsed.RelatedItemIDs
	if ids == nil {
		ids = []string{}
	}
	return &models.ModelReply{Text: parsed.Text, RelatedItemIDs: ids}
}
