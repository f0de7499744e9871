package aisvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/elimu/core/assignment"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/user"
)

type (
	Recommendation struct {
		CourseID   string  `json:"courseId"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
	}

	ContentAnalysis struct {
		Complexity              float64  `json:"complexity"`
		EstimatedTimeToComplete float64  `json:"estimatedTimeToComplete"`
		KeyConcepts             []string `json:"keyConcepts"`
		Prerequisites           []string `json:"prerequisites"`
		RelatedTopics           []string `json:"relatedTopics"`
		DifficultyScore         float64  `json:"difficultyScore"`
	}

	GradingResult struct {
		Score        float64 `json:"score"`
		Confidence   float64 `json:"confidence"`
		Feedback     string  `json:"feedback"`
		RubricScores []struct {
			Criterion string  `json:"criterion"`
			Score     float64 `json:"score"`
			Feedback  string  `json:"feedback"`
		} `json:"rubricScores"`
	}

	LearningPath struct {
		SuggestedOrder          []string `json:"suggestedOrder"`
		EstimatedCompletionTime float64  `json:"estimatedCompletionTime"`
		RecommendedFocus        []string `json:"recommendedFocus"`
		PotentialChallenges     []string `json:"potentialChallenges"`
		OptimizationStrategy    string   `json:"optimizationStrategy"`
	}

	PlagiarismReport struct {
		PlagiarismScore    float64 `json:"plagiarismScore"`
		SuspiciousSections []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
			Suggestion string  `json:"suggestion"`
		} `json:"suspiciousSections"`
		OriginalityScore float64 `json:"originalityScore"`
	}
)

func (c *Client) CourseRecommendations(ctx context.Context, usr user.User, available []course.Course) ([]Recommendation, error) {
	var courses strings.Builder
	for _, crs := range available {
		fmt.Fprintf(&courses, "- %s (id: %s)\n  Level: %s\n  Category: %s\n  Tags: %s\n",
			crs.Title, crs.ID.Hex(), crs.Level, crs.Category, strings.Join(crs.Tags, ", "))
	}

	prompt := fmt.Sprintf(`Based on the following user profile and available courses, recommend the top 5 most suitable courses:
User Profile:
- Learning Style: %s
- Current Level: %s
- Topics of Interest: %s
- Completed Courses: %d

Available Courses:
%s
Provide recommendations in JSON format with the following structure:
{
  "recommendations": [
    {"courseId": "string", "confidence": number, "reason": "string"}
  ]
}`,
		usr.Preferences.LearningStyle, usr.Preferences.DifficultyLevel,
		strings.Join(usr.Preferences.Topics, ", "), len(usr.EnrolledCourses), courses.String())

	var out struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := c.generateJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

func (c *Client) AnalyzeContent(ctx context.Context, content, contentType string) (ContentAnalysis, error) {
	if contentType == "" {
		contentType = "text"
	}
	prompt := fmt.Sprintf(`Analyze the following %s content and provide insights:
Content: %s

Provide analysis in JSON format with the following structure:
{
  "complexity": number,
  "estimatedTimeToComplete": number,
  "keyConcepts": ["string"],
  "prerequisites": ["string"],
  "relatedTopics": ["string"],
  "difficultyScore": number
}`, contentType, content)

	var out ContentAnalysis
	err := c.generateJSON(ctx, prompt, &out)
	return out, err
}

func (c *Client) GradeAssignment(ctx context.Context, content string, rubric []assignment.RubricCriterion, instructions string) (GradingResult, error) {
	var rb strings.Builder
	for _, criterion := range rubric {
		fmt.Fprintf(&rb, "- %s\n  Description: %s\n  Points: %g\n  Weight: %g\n",
			criterion.Criterion, criterion.Description, criterion.Points, criterion.Weight)
	}
	prompt := fmt.Sprintf(`Grade the following assignment submission based on the provided rubric:
Submission: %s

Rubric:
%s`, content, rb.String())
	if instructions != "" {
		prompt += "\nAdditional instructions: " + instructions + "\n"
	}
	prompt += `
Provide grading in JSON format with the following structure:
{
  "score": number,
  "confidence": number,
  "feedback": "string",
  "rubricScores": [
    {"criterion": "string", "score": number, "feedback": "string"}
  ]
}`

	var out GradingResult
	err := c.generateJSON(ctx, prompt, &out)
	return out, err
}

// GradeSubmission satisfies assignment.AIGrader.
func (c *Client) GradeSubmission(ctx context.Context, content string, rubric []assignment.RubricCriterion, instructions string) (float64, string, error) {
	res, err := c.GradeAssignment(ctx, content, rubric, instructions)
	if err != nil {
		return 0, "", err
	}
	return res.Score, res.Feedback, nil
}

var _ assignment.AIGrader = (*Client)(nil)

func (c *Client) OptimizeLearningPath(ctx context.Context, usr user.User, current course.Course) (LearningPath, error) {
	prompt := fmt.Sprintf(`Based on the user's progress and current course, suggest an optimized learning path:
User Profile:
- Learning Style: %s
- Current Level: %s
- Completed Courses: %d
- Current Course: %s

Provide optimization suggestions in JSON format with the following structure:
{
  "suggestedOrder": ["lessonId"],
  "estimatedCompletionTime": number,
  "recommendedFocus": ["string"],
  "potentialChallenges": ["string"],
  "optimizationStrategy": "string"
}`,
		usr.Preferences.LearningStyle, usr.Preferences.DifficultyLevel,
		len(usr.EnrolledCourses), current.Title)

	var out LearningPath
	err := c.generateJSON(ctx, prompt, &out)
	return out, err
}

func (c *Client) CheckPlagiarism(ctx context.Context, content, contentType string) (PlagiarismReport, error) {
	if contentType == "" {
		contentType = "text"
	}
	prompt := fmt.Sprintf(`Analyze the following %s content for potential plagiarism:
Content: %s

Provide analysis in JSON format with the following structure:
{
  "plagiarismScore": number,
  "suspiciousSections": [
    {"text": "string", "confidence": number, "suggestion": "string"}
  ],
  "originalityScore": number
}`, contentType, content)

	var out PlagiarismReport
	err := c.generateJSON(ctx, prompt, &out)
	return out, err
}
