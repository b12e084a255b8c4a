package blocks

import (
	"fmt"

	"portfolio-backend/internal/httpx"
	"portfolio-backend/internal/validation"
)

// Validate checks every block's type and payload and returns validation
// details keyed like "blocks[2].content.url", or nil when all blocks are valid.
func Validate(val *validation.Validator, list []Block) map[string]string {
	details := map[string]string{}
	for i, b := range list {
		prefix := fmt.Sprintf("blocks[%d]", i)
		if !b.Type.Valid() {
			details[prefix+".type"] = "oneof"
			continue
		}
		if b.parseErr != nil {
			details[prefix+".content"] = "invalid"
			continue
		}
		if b.Content == nil || !b.Content.accepts(b.Type) {
			details[prefix+".content"] = "required"
			continue
		}
		if b.Order < 0 {
			details[prefix+".order"] = "gte"
		}
		if err := val.Struct(b.Content); err != nil {
			fieldErrs := httpx.ValidationDetails(val.ValidationErrors(err))
			if len(fieldErrs) == 0 {
				details[prefix+".content"] = "invalid"
				continue
			}
			for field, tag := range fieldErrs {
				details[prefix+".content."+field] = tag
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
