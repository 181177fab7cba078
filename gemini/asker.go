package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/jerpint/ragthedocs"
	"google.golang.org/genai"
)

// DefaultAnswerModel is the model that writes answers.
const DefaultAnswerModel = "gemini-2.5-flash"

// Ensure Asker implements ragthedocs.Asker at compile time.
var _ ragthedocs.Asker = (*Asker)(nil)

// ContentGenerator is the subset of genai.Models used by Asker.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Asker answers questions from the entries most similar to the question.
type Asker struct {
	models ContentGenerator
	search ragthedocs.SearchService

	// Limit is the number of entries given to the model.
	// Zero means ragthedocs.DefaultSearchLimit.
	Limit int

	// Model overrides DefaultAnswerModel.
	Model string
}

// NewAsker creates a new Asker. Pass client.Models of a *genai.Client.
func NewAsker(models ContentGenerator, search ragthedocs.SearchService) *Asker {
	return &Asker{models: models, search: search, Model: DefaultAnswerModel}
}

// Ask answers a natural language question about the indexed documentation.
func (a *Asker) Ask(ctx context.Context, question string) (*ragthedocs.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALID, "question required")
	}

	results, err := a.search.Search(ctx, question, ragthedocs.SearchOptions{Limit: a.Limit})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ragthedocs.Errorf(ragthedocs.ENOTFOUND, "no indexed documentation matches the question")
	}

	resp, err := a.models.GenerateContent(ctx, a.Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(results, question)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, classifyAnswer(err)
	}
	if resp == nil {
		return nil, ragthedocs.Errorf(ragthedocs.EINTERNAL, "gemini returned nil result")
	}

	return &ragthedocs.Answer{Text: resp.Text(), Sources: results}, nil
}

func classifyAnswer(err error) error {
	if ragthedocs.ErrorCode(classify(err)) == ragthedocs.ERATELIMIT {
		return ragthedocs.Errorf(ragthedocs.ERATELIMIT, "gemini rate limit exceeded: %v", err)
	}
	return fmt.Errorf("gemini generate: %w", err)
}

// BuildConfig returns the GenerateContentConfig for answer generation.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a helpful assistant answering questions about software documentation. " +
					"Answer based only on the excerpts provided and cite the source URLs you used. " +
					"If the answer is not in the excerpts, say so.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt lays out the retrieved excerpts, best match first,
// followed by the question.
func BuildUserPrompt(results []ragthedocs.SearchResult, question string) string {
	var sb strings.Builder
	sb.WriteString("<excerpts>\n")
	for i, r := range results {
		sb.WriteString("<excerpt>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", i+1)
		fmt.Fprintf(&sb, "<title>%s</title>\n", r.Entry.Title)
		fmt.Fprintf(&sb, "<source>%s</source>\n", r.Entry.CitationURL())
		fmt.Fprintf(&sb, "<content>%s</content>\n", r.Entry.Content)
		sb.WriteString("</excerpt>\n")
	}
	sb.WriteString("</excerpts>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
