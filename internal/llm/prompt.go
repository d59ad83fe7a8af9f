package llm

import (
	"fmt"
	"strings"

	"github.com/Rrens/datachat/internal/domain"
)

// historyWindow limits how many prior chat turns are embedded into a prompt
const historyWindow = 10

const analystSystemPrompt = `You are an expert data analyst. Your task is to analyze datasets and provide
insightful, actionable observations. When analyzing data:
1. Identify key patterns, trends, and anomalies
2. Highlight important statistics and correlations
3. Point out data quality issues (missing values, outliers, etc.)
4. Suggest potential insights or business implications
5. Be concise but comprehensive
6. Use clear, professional language

You will be given a dataset summary. Analyze it thoroughly and provide your insights.`

const assistantSystemPrompt = `You are a helpful data analyst assistant. You have access to a dataset and can answer
questions about it, provide insights, suggest analyses, and help interpret the data. Be conversational
but professional.`

// buildDataContext renders the dataset facts embedded into every prompt
func buildDataContext(profile *domain.Profile, summary string) string {
	return fmt.Sprintf(`Dataset Summary:
%s

Dataset Information:
- Shape: %d rows, %d columns
- Columns: %s
- Numeric columns: %s
- Categorical columns: %s`,
		summary,
		profile.Rows, profile.Cols,
		joinOrNone(columnNames(profile)),
		joinOrNone(profile.NumericColumns),
		joinOrNone(profile.CategoricalColumns),
	)
}

// BuildAnalysisRequest creates the request for a full-dataset analysis or a
// specific question against the dataset
func BuildAnalysisRequest(profile *domain.Profile, summary, query string) Request {
	context := buildDataContext(profile, summary)

	var prompt string
	if query != "" {
		prompt = fmt.Sprintf("%s\n\nUser Question: %s\n\nPlease answer the question based on the dataset.", context, query)
	} else {
		prompt = fmt.Sprintf("%s\n\nPlease provide a comprehensive analysis of this dataset, including key insights, patterns, and recommendations.", context)
	}

	return Request{System: analystSystemPrompt, Prompt: prompt}
}

// BuildChatRequest creates the request for a conversational turn, embedding
// the most recent chat history
func BuildChatRequest(profile *domain.Profile, summary string, history []domain.Message, message string) Request {
	context := buildDataContext(profile, summary)

	var b strings.Builder
	b.WriteString(context)
	b.WriteString("\n")

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleUser:
			fmt.Fprintf(&b, "\nUser: %s", msg.Content)
		case domain.RoleAssistant:
			fmt.Fprintf(&b, "\nAssistant: %s", msg.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser: %s\n\nAssistant:", message)

	return Request{System: assistantSystemPrompt, Prompt: b.String()}
}

func columnNames(profile *domain.Profile) []string {
	names := make([]string, 0, len(profile.Columns))
	for _, col := range profile.Columns {
		names = append(names, col.Name)
	}
	return names
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}
