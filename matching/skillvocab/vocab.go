package skillvocab

import "strings"

// vocabulary is the fixed token set used by the deterministic skill
// extractors: languages, frameworks, databases, cloud and DevOps tooling,
// testing libraries. Tokens are matched case-insensitively.
var vocabulary = []string{
	// Languages
	"Python", "Java", "JavaScript", "TypeScript", "Go", "C++", "C#", "Ruby",
	"PHP", "Swift", "Kotlin", "Rust", "Scala", "R", "SQL",
	// Frameworks and libraries
	"React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask",
	"FastAPI", "Spring Boot", "Rails", ".NET", "Laravel", "Next.js",
	"TensorFlow", "PyTorch", "Pandas", "NumPy",
	// Databases
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "SQLite", "Cassandra",
	"Elasticsearch", "DynamoDB", "Oracle",
	// Cloud and DevOps
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Jenkins",
	"Git", "GitHub Actions", "CI/CD", "Linux", "Nginx", "Kafka", "RabbitMQ",
	// Testing
	"Jest", "Pytest", "JUnit", "Selenium", "Cypress", "Mocha",
	// General
	"REST", "GraphQL", "gRPC", "Microservices", "HTML", "CSS",
}

// aliases maps lowercased variants to canonical casing.
var aliases = map[string]string{
	"react.js":   "React",
	"reactjs":    "React",
	"nodejs":     "Node.js",
	"node":       "Node.js",
	"golang":     "Go",
	"postgres":   "PostgreSQL",
	"k8s":        "Kubernetes",
	"js":         "JavaScript",
	"ts":         "TypeScript",
	"mongo":      "MongoDB",
	"springboot": "Spring Boot",
}

// Vocabulary returns the fixed token list.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Canonical maps a raw skill token to its canonical casing. Unknown tokens
// are returned trimmed but otherwise untouched.
func Canonical(token string) string {
	trimmed := strings.TrimSpace(token)
	lower := strings.ToLower(trimmed)
	if canonical, ok := aliases[lower]; ok {
		return canonical
	}
	for _, v := range vocabulary {
		if strings.ToLower(v) == lower {
			return v
		}
	}
	return trimmed
}

// FindInText scans free text for vocabulary tokens, case-insensitively,
// preserving vocabulary order and uniqueness.
func FindInText(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, token := range vocabulary {
		if containsToken(lower, strings.ToLower(token)) {
			found = append(found, token)
		}
	}
	return found
}

// containsToken requires non-alphanumeric boundaries around the token so
// "go" does not fire inside "mongodb". Tokens with punctuation (C++, .NET)
// fall back to plain substring search.
func containsToken(text, token string) bool {
	if strings.ContainsAny(token, "+#./ ") {
		return strings.Contains(text, token)
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], token)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(token)
		beforeOK := start == 0 || !isAlnum(text[start-1])
		afterOK := end == len(text) || !isAlnum(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
