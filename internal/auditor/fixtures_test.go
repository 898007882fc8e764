package auditor

import "strings"

const validReply = `{
  "total_score": 560,
  "competencies": {
    "c1": {"score": 120, "errors": "Truncamento no segundo parágrafo"},
    "c2": {"score": 120, "analysis": "Tema compreendido, repertório improdutivo"},
    "c3": {"score": 80, "gaps": "Argumento sem aprofundamento"},
    "c4": {"score": 120, "connectives": "Quebra de paralelismo"},
    "c5": {"score": 120, "details": "Falta detalhamento do meio"}
  },
  "strict_feedback": "O texto não sustenta a tese.",
  "action_plan": "Estude proposta de intervenção completa."
}`

func tenLineEssay() string {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "A persistência da desigualdade educacional compromete a cidadania plena no país."
	}
	return strings.Join(lines, "\n")
}
