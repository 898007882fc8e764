package auditor

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed audit_result.schema.json
var auditResultSchemaSource string

var auditResultSchema = jsonschema.MustCompileString("audit_result.schema.json", auditResultSchemaSource)

// ParseResult decodes a raw model reply into an AuditResult. The reply must
// be a single JSON object satisfying the audit result schema; nothing is
// repaired or defaulted. Failures are *ContractError values.
func ParseResult(raw string) (AuditResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return AuditResult{}, &ContractError{Raw: raw, Reason: fmt.Errorf("empty reply")}
	}

	var document interface{}
	if err := json.Unmarshal([]byte(trimmed), &document); err != nil {
		return AuditResult{}, &ContractError{Raw: raw, Reason: fmt.Errorf("reply is not json: %w", err)}
	}

	if err := auditResultSchema.Validate(document); err != nil {
		return AuditResult{}, &ContractError{Raw: raw, Reason: fmt.Errorf("reply does not match schema: %w", err)}
	}

	var result AuditResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return AuditResult{}, &ContractError{Raw: raw, Reason: fmt.Errorf("decode reply: %w", err)}
	}

	for _, c := range Competencies {
		if score := result.Competencies.Score(c); !score.Valid() {
			return AuditResult{}, &ContractError{Raw: raw, Reason: fmt.Errorf("%s score %d outside permitted set", c, score)}
		}
	}

	return result, nil
}
