package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// The canonical envelope bans raw source identifiers: consumers key on the
// stable display_name/entry_key pair, never on provider usernames or player
// ids.
var disallowedKeys = map[string]bool{
	"username":     true,
	"player_id":    true,
	"playerId":     true,
	"dk_player_id": true,
}

// Numeric content must be numbers. Only id-like and display fields may hold
// strings that happen to parse as numbers.
var numericStringAllowed = []string{
	".contest_id",
	".contest_key",
	".entry_key",
	".vip_entry_key",
	".cluster_key",
	".display_name",
	".player_name",
	".name",
	".min_entry_fee",
}

// Array fields whose elements are id-like strings. Elements walk with their
// index as the path suffix, so the suffix list above cannot cover them.
var numericStringAllowedWithin = []string{
	".entry_keys.",
}

// requiredContestFields is the declared schema contract for the contest
// object. Removing or retyping any of these requires a schema version bump;
// a build that violates the contract must not publish.
var requiredContestFields = map[string]string{
	"contest_id":      "string",
	"contest_key":     "string",
	"name":            "string",
	"sport":           "string",
	"state":           "string",
	"start_time":      "string",
	"entry_fee_cents": "number",
	"max_entries":     "number",
}

var validStates = map[string]bool{
	"upcoming":  true,
	"live":      true,
	"completed": true,
	"cancelled": true,
}

// Validate checks an envelope against the declared schema contract and
// returns the sorted list of violations. An empty list means the envelope is
// safe to publish.
func Validate(env *Envelope) []string {
	var violations []string

	if env.SchemaVersion != SchemaVersion {
		violations = append(violations, fmt.Sprintf("schema_version_mismatch:%d", env.SchemaVersion))
	}
	if _, err := time.Parse(time.RFC3339, env.GeneratedAt); err != nil {
		violations = append(violations, "invalid_datetime:generated_at")
	}

	// Structural checks run over the serialized form so they see exactly what
	// a consumer sees.
	data, err := json.Marshal(env)
	if err != nil {
		return append(violations, "unserializable_envelope")
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return append(violations, "unserializable_envelope")
	}

	walk(doc, "", &violations)

	sports, _ := doc["sports"].(map[string]any)
	for sportKey, raw := range sports {
		section, ok := raw.(map[string]any)
		if !ok {
			violations = append(violations, "invalid_type:sports."+sportKey)
			continue
		}
		prefix := "sports." + sportKey
		validateSection(section, prefix, &violations)
	}

	sort.Strings(violations)
	return dedupe(violations)
}

// CheckContract wraps Validate into the publish gate.
func CheckContract(env *Envelope) error {
	if violations := Validate(env); len(violations) > 0 {
		return fmt.Errorf("envelope violates schema contract: %s", strings.Join(violations, ", "))
	}
	return nil
}

func validateSection(section map[string]any, prefix string, violations *[]string) {
	status, _ := section["status"].(string)
	if status != string(StatusOK) {
		return
	}

	contest, ok := section["contest"].(map[string]any)
	if !ok {
		*violations = append(*violations, "missing_required:"+prefix+".contest")
		return
	}
	for field, kind := range requiredContestFields {
		value, present := contest[field]
		if !present || value == nil {
			*violations = append(*violations, "missing_required:"+prefix+".contest."+field)
			continue
		}
		if !typeMatches(value, kind) {
			*violations = append(*violations, "type_mismatch:"+prefix+".contest."+field)
		}
	}
	if state, ok := contest["state"].(string); ok && !validStates[state] {
		*violations = append(*violations, "invalid_value:"+prefix+".contest.state")
	}
	if start, ok := contest["start_time"].(string); ok {
		if _, err := time.Parse(time.RFC3339, start); err != nil {
			*violations = append(*violations, "invalid_datetime:"+prefix+".contest.start_time")
		}
	}
	key, _ := contest["contest_key"].(string)
	sport, _ := contest["sport"].(string)
	id, _ := contest["contest_id"].(string)
	if key != "" && sport != "" && id != "" && key != sport+":"+id {
		*violations = append(*violations, "invalid_value:"+prefix+".contest.contest_key")
	}

	checkScope(section, "ownership_watchlist", prefix, violations)
	if m, ok := section["metrics"].(map[string]any); ok {
		checkScope(m, "threat", prefix+".metrics", violations)
		checkScope(m, "ownership_summary", prefix+".metrics", violations)
	}
}

// checkScope enforces that scope-bearing blocks declare one. Scope is a
// mandatory typed field, not an optional annotation.
func checkScope(parent map[string]any, key, prefix string, violations *[]string) {
	block, ok := parent[key].(map[string]any)
	if !ok {
		return
	}
	scope, _ := block["scope"].(string)
	if scope != "full" && scope != "partial" {
		*violations = append(*violations, "missing_required:"+prefix+"."+key+".scope")
	}
}

func typeMatches(value any, kind string) bool {
	switch kind {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "bool":
		_, ok := value.(bool)
		return ok
	}
	return false
}

func walk(value any, path string, violations *[]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			childPath := path + "." + key
			if disallowedKeys[key] {
				*violations = append(*violations, "disallowed_key:"+strings.TrimPrefix(childPath, "."))
			}
			walk(child, childPath, violations)
		}
	case []any:
		for i, child := range v {
			walk(child, path+"."+strconv.Itoa(i), violations)
		}
	case string:
		if isNumericString(v) && !numericStringOK(path) {
			*violations = append(*violations, "numeric_string:"+strings.TrimPrefix(path, "."))
		}
	}
}

func isNumericString(s string) bool {
	text := strings.TrimSpace(s)
	if text == "" {
		return false
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

func numericStringOK(path string) bool {
	for _, suffix := range numericStringAllowed {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	for _, within := range numericStringAllowedWithin {
		if strings.Contains(path, within) {
			return true
		}
	}
	return false
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	var last string
	for i, v := range sorted {
		if i == 0 || v != last {
			out = append(out, v)
		}
		last = v
	}
	return out
}
