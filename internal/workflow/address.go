// Package workflow implements the address update slot-filling workflow.
package workflow

import (
	"regexp"
	"strings"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

// PromptKind tells the orchestrator which prompt NextPrompt rendered, so
// state transitions never depend on matching the rendered text.
type PromptKind int

const (
	// PromptMissingFields asks the user for the fields still missing.
	PromptMissingFields PromptKind = iota
	// PromptConfirmSummary shows the full draft and asks for confirmation.
	PromptConfirmSummary
	// PromptConfirmReminder repeats the confirm/cancel instruction.
	PromptConfirmReminder
)

const confirmInstruction = "Reply `confirm` to submit, `cancel` to stop, or reply with corrections."

// requiredFields lists the required field names in prompt order.
var requiredFields = []string{"address_line1", "city", "state", "postal_code", "country"}

// fieldPairRe captures key:value pairs on a single line, where the value
// runs up to the next recognized field name or end of input.
var fieldPairRe = regexp.MustCompile(
	`(?i)\b(address_line1|address_line2|city|state|postal_code|country)\s*:\s*(.+?)(?:\s+\b(?:address_line1|address_line2|city|state|postal_code|country)\b\s*:|$)`,
)

// cancelWords end an active workflow regardless of draft contents.
var cancelWords = map[string]struct{}{
	"cancel": {},
	"stop":   {},
	"exit":   {},
}

// IsCancel reports whether the input ends the workflow.
func IsCancel(text string) bool {
	_, ok := cancelWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// IsConfirm reports whether the input submits the draft.
func IsConfirm(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == "confirm"
}

// MissingFields returns the required fields the draft does not have yet,
// in prompt order.
func MissingFields(d *domain.AddressDraft) []string {
	var missing []string
	for _, f := range requiredFields {
		if fieldValue(d, f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func fieldValue(d *domain.AddressDraft, name string) string {
	switch name {
	case "address_line1":
		return d.Line1
	case "address_line2":
		return d.Line2
	case "city":
		return d.City
	case "state":
		return d.State
	case "postal_code":
		return d.PostalCode
	case "country":
		return d.Country
	}
	return ""
}

func setField(d *domain.AddressDraft, name, value string) {
	switch name {
	case "address_line1":
		d.Line1 = value
	case "address_line2":
		d.Line2 = value
	case "city":
		d.City = value
	case "state":
		d.State = value
	case "postal_code":
		d.PostalCode = value
	case "country":
		d.Country = value
	}
}

// ParseFields extracts key:value pairs from free text and merges them
// into the draft. Two passes run in order: a line-based split on the
// first colon, then a single-line scan for recognized field names. Pairs
// found by the second pass override the first. Unrecognized keys are
// ignored; malformed lines never fail.
func ParseFields(text string, d *domain.AddressDraft) *domain.AddressDraft {
	kv := make(map[string]string)

	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		idx := strings.Index(ln, ":")
		if idx < 0 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(ln[:idx]))
		// Accept the bulleted "- key: value" lines the confirmation
		// summary prints, so a pasted summary parses back.
		k = strings.TrimSpace(strings.TrimLeft(k, "-"))
		v := strings.TrimSpace(ln[idx+1:])
		kv[k] = v
	}

	// RE2 has no lookahead, so the terminator key is consumed by the
	// match; resuming at the end of the value group re-scans it. Scanning
	// one line at a time keeps whitespace in the pattern from crossing a
	// newline and swallowing the start of the next line as a value.
	for _, ln := range strings.Split(text, "\n") {
		rest := strings.TrimSpace(ln)
		for {
			loc := fieldPairRe.FindStringSubmatchIndex(rest)
			if loc == nil {
				break
			}
			key := strings.ToLower(rest[loc[2]:loc[3]])
			value := strings.TrimSpace(rest[loc[4]:loc[5]])
			if value != "" {
				kv[key] = value
			}
			rest = rest[loc[5]:]
		}
	}

	for _, f := range []string{"address_line1", "address_line2", "city", "state", "postal_code", "country"} {
		if v, ok := kv[f]; ok {
			setField(d, f, v)
		}
	}

	return d
}

// NextPrompt renders the next instruction for the user given the draft
// state: the missing-field request, the confirmation summary, or the
// short confirm reminder. Pure; calling it twice on an unchanged draft
// yields the identical prompt.
func NextPrompt(d *domain.AddressDraft) (string, PromptKind) {
	missing := MissingFields(d)
	if len(missing) > 0 {
		return "To update your address, please provide: " +
			strings.Join(missing, ", ") + ".\n" +
			"Example format:\n" +
			"address_line1: 12 Main St\n" +
			"address_line2: Apt 3 (optional)\n" +
			"city: Boston\n" +
			"state: MA\n" +
			"postal_code: 02110\n" +
			"country: US", PromptMissingFields
	}

	if !d.AwaitingConfirmation {
		return "Please confirm I should update your address to:\n" +
			"- address_line1: " + d.Line1 + "\n" +
			"- address_line2: " + d.Line2 + "\n" +
			"- city: " + d.City + "\n" +
			"- state: " + d.State + "\n" +
			"- postal_code: " + d.PostalCode + "\n" +
			"- country: " + d.Country + "\n\n" +
			confirmInstruction, PromptConfirmSummary
	}

	return confirmInstruction, PromptConfirmReminder
}
