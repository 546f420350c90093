package protocol

import (
	"encoding/json"

	"freeze_dryer/internal/models"
)

// MergeStatus applies a status payload onto dst. Fields present in the payload
// overwrite, absent fields are preserved and activeRecipe is replaced as a
// whole. dst is left untouched if the payload does not decode.
func MergeStatus(dst *models.DryerStatus, payload json.RawMessage) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(payload, &keys); err != nil {
		return err
	}

	next := dst.Clone()
	if _, ok := keys["activeRecipe"]; ok {
		next.ActiveRecipe = nil
	}
	if err := json.Unmarshal(payload, &next); err != nil {
		return err
	}
	*dst = next
	return nil
}
