package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/airmems/meme_api/model"
	"github.com/airmems/meme_api/shared"
)

// AIService talks to the vision model for lesson and explanation generation.
// One attempt per user action: no retry, no timeout beyond the caller's
// context. A missing API key fails each request with a configuration error
// instead of failing startup, so the rest of the app keeps working.
type AIService struct {
	appContext.DefaultService

	client *openai.Client
	model  string
	monSvc *MonitoringService
}

const AI_SVC = "ai_svc"

func (svc AIService) Id() string {
	return AI_SVC
}

func (svc *AIService) Configure(ctx *appContext.Context) error {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		svc.client = openai.NewClient(apiKey)
	}

	svc.model = os.Getenv("OPENAI_MODEL")
	if svc.model == "" {
		svc.model = openai.GPT4o
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *AIService) Start() error {
	svc.monSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	if svc.client == nil {
		log.Warn("OPENAI_API_KEY not set, generation endpoints will report a configuration error")
	}
	return nil
}

const explanationPromptTemplate = `You are an expert in internet culture and memes. Please analyze this meme image and its text: "%s"

Provide a clear, comprehensive explanation in %s language in the following JSON structure:

{
  "explanation": "Clear explanation of what this meme means, why it's funny, and what's happening in the image",
  "culturalContext": "Any cultural background, references, or context needed to understand this meme fully"
}

IMPORTANT:
- Respond ONLY in %s language
- Explain both the visual elements and the text/caption
- Include why this is considered funny or meaningful
- Mention any cultural references, trends, or background knowledge needed
- Keep explanations clear and accessible
- If there are no significant cultural elements, you can omit the culturalContext field

Make your explanation helpful for someone who might not understand the meme's context or humor.`

const lessonPromptTemplate = `You are an expert English teacher who creates vocabulary-focused language lessons using memes from Reddit.

The student is learning English at the %s level.

Analyze this meme image and its text: "%s"

Generate a vocabulary-focused English learning lesson based on both the visual content and text of the meme in the following JSON structure:

{
  "vocabulary": [
    {
      "word": "word or phrase from the meme",
      "definition": "clear, level-appropriate definition",
      "example": "one example sentence using this word"
    }
  ],
  "questions": [
    {
      "id": "q1",
      "type": "multiple_choice",
      "question": "What does 'word' mean?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "Option B",
      "explanation": "Why this answer is correct"
    },
    {
      "id": "q2",
      "type": "fill_in_the_gap",
      "question": "Fill in the gap: 'The cat _____ on the computer'",
      "correctAnswer": "sits",
      "explanation": "Explanation of the correct answer"
    },
    {
      "id": "q3",
      "type": "true_false",
      "question": "True or False: This word is commonly used in everyday English.",
      "options": ["True", "False"],
      "correctAnswer": "True",
      "explanation": "Why this is true or false"
    }
  ]
}

IMPORTANT:
- Extract 5-8 vocabulary words from both the meme image and text
- Create 8-12 interactive quiz questions (multiple choice, fill-in-the-gap, or true/false)
- Focus ONLY on vocabulary learning - no meme descriptions or cultural explanations
- Make definitions appropriate for %s level students
- Create diverse question types to practice the vocabulary thoroughly
- Use visual context from the image to enhance vocabulary selection

Make your explanations clear and supportive. Focus purely on vocabulary learning appropriate for the %s level.`

// ExplainMeme generates a natural-language explanation of a meme in the
// target language.
func (svc *AIService) ExplainMeme(ctx context.Context, memeID, memeTitle, memeURL, language string) (*model.Explanation, error) {
	if svc.client == nil {
		return nil, shared.NewConfigurationError("OpenAI API key not configured")
	}

	targetLanguage := shared.LanguageName(language)
	prompt := fmt.Sprintf(explanationPromptTemplate, memeTitle, targetLanguage, targetLanguage)
	system := fmt.Sprintf("You are an expert in internet culture and memes. Always respond with valid JSON in the exact format requested. Respond ONLY in %s language.", targetLanguage)

	content, err := svc.visionCompletion(ctx, system, prompt, memeURL, 1500)
	if err != nil {
		svc.record("explanation", "error")
		return nil, err
	}

	var payload struct {
		Explanation     string `json:"explanation"`
		CulturalContext string `json:"culturalContext"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		svc.record("explanation", "error")
		return nil, shared.NewMalformedUpstreamError("explanation reply is not valid JSON")
	}
	if payload.Explanation == "" {
		svc.record("explanation", "error")
		return nil, shared.NewMalformedUpstreamError("explanation reply missing explanation text")
	}
	svc.record("explanation", "ok")

	now := time.Now()
	return &model.Explanation{
		ID:              fmt.Sprintf("explanation_%s_%s_%d", memeID, language, now.UnixMilli()),
		MemeID:          memeID,
		Language:        language,
		Explanation:     payload.Explanation,
		CulturalContext: payload.CulturalContext,
		CreatedAt:       now,
	}, nil
}

// GenerateLesson generates a vocabulary lesson with quiz questions for a meme
// at the given proficiency level.
func (svc *AIService) GenerateLesson(ctx context.Context, memeID, memeTitle, memeURL, level string) (*model.Lesson, error) {
	if svc.client == nil {
		return nil, shared.NewConfigurationError("OpenAI API key not configured")
	}

	prompt := fmt.Sprintf(lessonPromptTemplate, strings.ToUpper(level), memeTitle, level, level)
	system := "You are an expert English teacher. Always respond with valid JSON in the exact format requested."

	content, err := svc.visionCompletion(ctx, system, prompt, memeURL, 2000)
	if err != nil {
		svc.record("lesson", "error")
		return nil, err
	}

	lesson, err := BuildLessonFromReply(memeID, level, []byte(content))
	if err != nil {
		svc.record("lesson", "error")
		return nil, err
	}
	svc.record("lesson", "ok")
	return lesson, nil
}

func (svc *AIService) record(kind, outcome string) {
	if svc.monSvc != nil {
		svc.monSvc.RecordGeneration(kind, outcome)
	}
}

// BuildLessonFromReply validates a raw generation reply and shapes it into a
// lesson record. Split out so the validation is testable without a live
// client.
func BuildLessonFromReply(memeID, level string, reply []byte) (*model.Lesson, error) {
	var payload struct {
		Vocabulary []model.VocabularyItem `json:"vocabulary"`
		Questions  []model.QuizQuestion   `json:"questions"`
	}
	if err := json.Unmarshal(reply, &payload); err != nil {
		return nil, shared.NewMalformedUpstreamError("lesson reply is not valid JSON")
	}
	if len(payload.Vocabulary) == 0 {
		return nil, shared.NewMalformedUpstreamError("lesson reply missing vocabulary")
	}
	if len(payload.Questions) == 0 {
		return nil, shared.NewMalformedUpstreamError("lesson reply missing questions")
	}
	for _, q := range payload.Questions {
		if q.ID == "" || q.Question == "" || q.CorrectAnswer == "" || !shared.IsValidQuestionType(q.Type) {
			return nil, shared.NewMalformedUpstreamError("lesson reply contains an invalid question")
		}
	}

	vocab, _ := json.Marshal(payload.Vocabulary)
	questions, _ := json.Marshal(payload.Questions)

	now := time.Now()
	return &model.Lesson{
		ID:          fmt.Sprintf("lesson_%s_%s_%d", memeID, level, now.UnixMilli()),
		MemeID:      memeID,
		Level:       level,
		Explanation: "",
		Vocabulary:  vocab,
		Questions:   questions,
		CreatedAt:   now,
	}, nil
}

func (svc *AIService) visionCompletion(ctx context.Context, system, prompt, imageURL string, maxTokens int) (string, error) {
	resp, err := svc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: svc.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		log.WithError(err).Error("Vision completion failed")
		return "", shared.NewNetworkFailureError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", shared.NewMalformedUpstreamError("no content received from model")
	}
	return resp.Choices[0].Message.Content, nil
}
