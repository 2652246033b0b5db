package models

const (
	// MetadataTopicKey is the vector-store metadata key used for filtering.
	MetadataTopicKey = "topic"

	PlaceholderSchema   = "{SCHEMA}"
	PlaceholderExamples = "{EXAMPLES}"
	PlaceholderQuestion = "{QUESTION}"

	ScratchpadOpenTag  = "<scratchpad>"
	ScratchpadCloseTag = "</scratchpad>"
	SQLOpenTag         = "<sql>"
	SQLCloseTag        = "</sql>"
)

var (
	SQLPromptTemplate = `You are an expert SQL analyst. Given a database schema and a few example
question/SQL pairs, write a single SQL query that answers the user's question.

Database schema:
{SCHEMA}

Examples:
{EXAMPLES}

Question: {QUESTION}

First reason step by step about which tables, columns and joins are needed,
inside <scratchpad></scratchpad> tags. Then write exactly one SQL query inside
<sql></sql> tags. Always emit both pairs of tags.
`
)
