package recommend

import (
	"fmt"
	"strings"

	"github.com/bobeautician/advisor/internal/models"
)

const consultantPersona = `You are BoBeautician, an AI agent and skincare consultant that is not a doctor and provides suggestions as an AI agent. You provide personalized, science-based skincare recommendations.

Your expertise includes:
- Analyzing skin types and conditions
- Recommending evidence-based treatments
- Understanding ingredient interactions and benefits
- Creating safe, effective skincare routines

Your response style:
- Professional yet approachable
- Specific product recommendations with clear reasoning
- Safety-focused with patch testing reminders
- Structured and easy to follow
`

const consultationInstructions = `Please provide a comprehensive skincare consultation that includes:

1. SKIN ANALYSIS: Brief assessment of their skin type and concerns
2. RECOMMENDED PRODUCTS: Specific products from the database with clear reasoning
3. KEY INGREDIENTS: Beneficial ingredients to look for and any to avoid
4. DAILY ROUTINE: Simple AM/PM routine using recommended products
5. SAFETY NOTES: Important precautions and patch testing advice

Keep your response concise, practical, and focused on products from the provided database.

DERMATOLOGIST RECOMMENDATION:`

const conversationalPersona = `You are a helpful, friendly, and knowledgeable AI assistant. You should respond naturally and conversationally.

Key guidelines:
- Be conversational and natural in your responses
- Don't follow rigid formats or structures unless specifically asked
- Provide helpful, accurate information
- Be engaging and personable
- If asked about skincare topics, you can provide general advice but remind users to consult professionals for specific concerns
- Keep responses concise but comprehensive
- Feel free to ask follow-up questions to better help the user`

// BuildQAPrompt renders the consultation prompt: persona, optional client profile, the composed
// catalog context, the question and the expected answer structure.
func BuildQAPrompt(question, context string, profile *models.Profile) string {
	var b strings.Builder

	b.WriteString(consultantPersona)

	if profile != nil {
		skinType := "Not specified"
		if profile.SkinType != "" {
			skinType = string(profile.SkinType)
		}

		sensitivity := "Unknown"

		switch profile.Sensitive {
		case models.SensitivityYes:
			sensitivity = "Yes"
		case models.SensitivityNo:
			sensitivity = "No"
		}

		concerns := "General care"
		if len(profile.Concerns) > 0 {
			concerns = joinConcerns(profile.Concerns)
		}

		fmt.Fprintf(&b, "\nCLIENT PROFILE:\n- Skin Type: %s\n- Sensitivity: %s\n- Main Concerns: %s\n",
			skinType, sensitivity, concerns)
	}

	fmt.Fprintf(&b, "\n\nAVAILABLE PRODUCTS & INGREDIENTS:\n%s\n\nCLIENT QUESTION: %s\n\n", context, question)
	b.WriteString(consultationInstructions)

	return b.String()
}

// BuildFreeformPrompt renders a conversational prompt with optional prior turns.
func BuildFreeformPrompt(question, history string) string {
	if strings.TrimSpace(history) != "" {
		return fmt.Sprintf("%s\n\nPrevious conversation:\n%s\n\nUser: %s\n\nAssistant:",
			conversationalPersona, history, question)
	}

	return fmt.Sprintf("%s\n\nUser: %s\n\nAssistant:", conversationalPersona, question)
}

// BuildRoutinePrompt asks for a morning/evening routine built from the named products.
func BuildRoutinePrompt(products []string, skinType string, concerns []string) string {
	return fmt.Sprintf(`As a skincare expert, create a simple daily routine using these products:

Products: %s
Skin Type: %s
Concerns: %s

Provide:
1. Morning routine (3-4 steps)
2. Evening routine (3-4 steps)
3. Weekly additions (if any)
4. Important timing notes

Routine:`, strings.Join(products, ", "), skinType, strings.Join(concerns, ", "))
}
