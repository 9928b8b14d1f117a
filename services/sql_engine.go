package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
)

// minQueryLength is a cheap circuit breaker against obviously broken
// generations. It is not a security boundary; the read-only database role
// is what actually prevents destructive statements.
const minQueryLength = 10

// noRowsAnswer is returned when the generated query yields nothing; no
// synthesis call is made in that case.
const noRowsAnswer = "Je n'ai trouvé aucun résultat correspondant."

var (
	codeFenceRegex  = regexp.MustCompile("```sql|```")
	selectBodyRegex = regexp.MustCompile(`(?is)(SELECT.*)`)
)

// SchemaProvider supplies the cached schema description.
type SchemaProvider interface {
	Description(ctx context.Context) (string, error)
}

// QueryExecutor runs a generated query and collects its result set.
type QueryExecutor interface {
	RunQuery(ctx context.Context, sql string) (models.QueryResult, error)
}

// SQLEngine answers data questions by generating, sanitizing and executing
// a SQL query, then phrasing the result set in natural language.
type SQLEngine struct {
	llm       Generator
	schema    SchemaProvider
	executor  QueryExecutor
	sqlModel  string
	chatModel string
}

func NewSQLEngine(llm Generator, schema SchemaProvider, executor QueryExecutor, sqlModel, chatModel string) *SQLEngine {
	return &SQLEngine{
		llm:       llm,
		schema:    schema,
		executor:  executor,
		sqlModel:  sqlModel,
		chatModel: chatModel,
	}
}

const sqlPromptTemplate = `### Task
Generate a PostgreSQL query to answer the following question:
%s

### Database Schema
%s

### Odoo Specific Rules (Strict)
1. **Clients**: Use table res_partner. A partner is a client if customer_rank > 0 OR is_company = true.
2. **Column Names**: ONLY use columns listed in the schema above. Do not invent columns like 'payment_date'.
3. **Simple Count**: If the question asks "How many", use SELECT COUNT(*) FROM table. Do not join account_move unless specifically asked about invoices.
4. **Joins**: Only use JOIN if the data is in two different tables.

### Response Format
Return ONLY the SQL query code. No comments, no explanations.
Start directly with SELECT.

### SQL Query`

// ExtractSQL normalizes a raw model response into a single candidate query:
// code fences dropped, everything from the first SELECT to the first
// semicolon (or the end) kept. When no SELECT is found the keyword is
// prepended once rather than rejecting the output: models fed this prompt
// tend to omit the leading keyword, and the execution step is the real gate
// for anything genuinely malformed. The cleanup is idempotent.
func ExtractSQL(text string) string {
	text = codeFenceRegex.ReplaceAllString(text, "")

	if match := selectBodyRegex.FindStringSubmatch(text); match != nil {
		sql, _, _ := strings.Cut(match[1], ";")
		text = strings.TrimSpace(sql)
	} else {
		text = strings.TrimSpace(text)
	}

	if !strings.HasPrefix(strings.ToLower(text), "select") && text != "" {
		text = "SELECT " + text
	}
	return text
}

const synthesisPromptTemplate = `You are an Odoo assistant.

User question: "%s"
Database result: %v
Columns: %v

Instructions:
- Answer naturally, in French.
- If the result is a single number, just give it.
- If it is a list, mention the main items.
- No technical vocabulary (no "tuple", "ID", "SQL", "row", "column").`

// Answer runs the full generate → sanitize → execute → synthesize pipeline.
// A bad generated query is an expected outcome, not an exception: execution
// failures come back as a user-visible explanation inside the envelope.
// Generation transport failures propagate as errors.
func (e *SQLEngine) Answer(ctx context.Context, question string) (models.AnswerEnvelope, error) {
	schemaDesc, err := e.schema.Description(ctx)
	if err != nil {
		return models.AnswerEnvelope{}, fmt.Errorf("schema unavailable: %w", err)
	}

	raw, err := e.llm.Generate(ctx, e.sqlModel, fmt.Sprintf(sqlPromptTemplate, question, schemaDesc))
	if err != nil {
		return models.AnswerEnvelope{}, fmt.Errorf("query generation failed: %w", err)
	}

	sql := ExtractSQL(raw)
	if len(sql) < minQueryLength {
		logger.Warn("Generated query too short to execute", "question", question, "raw", raw)
		return models.AnswerEnvelope{Text: "Je n'ai pas réussi à construire une requête valide pour cette question."}, nil
	}

	logger.Debug("Executing generated query", "sql", sql)
	result, err := e.executor.RunQuery(ctx, sql)
	if err != nil {
		// Expected failure mode: surface the engine's message to the user
		logger.Warn("Generated query failed", "sql", sql, "error", err)
		return models.AnswerEnvelope{Text: fmt.Sprintf("La requête sur la base de données a échoué : %v", err)}, nil
	}

	if len(result.Rows) == 0 {
		return models.AnswerEnvelope{Text: noRowsAnswer}, nil
	}

	text, err := e.llm.Generate(ctx, e.chatModel,
		fmt.Sprintf(synthesisPromptTemplate, question, result.Rows, result.Columns))
	if err != nil {
		return models.AnswerEnvelope{}, fmt.Errorf("answer synthesis failed: %w", err)
	}

	return models.AnswerEnvelope{Text: text}, nil
}
