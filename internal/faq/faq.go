// ABOUTME: Static FAQ catalog with substring search over questions, answers, and tags
// ABOUTME: Serves the quick-answer surface alongside the conversational pipeline
package faq

import "strings"

// Item is one frequently asked question with its curated answer
type Item struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

// Categories lists the FAQ categories in display order
var Categories = []string{
	"Testing & Diagnosis",
	"Treatment & Medication",
	"Living with HIV",
	"Prevention & PrEP",
	"Support Resources",
}

var items = []Item{
	{
		ID:       "1",
		Category: "Testing & Diagnosis",
		Question: "What should I do if I think I've been exposed to HIV?",
		Answer:   "If you believe you may have been exposed to HIV, it's important to act quickly. Post-exposure prophylaxis (PEP) is a medication that can prevent HIV infection if started within 72 hours of exposure. Contact a healthcare provider, local clinic, or emergency room immediately. We understand this can be frightening, and you're not alone. Many people have navigated this situation, and there are resources available to help you.",
		Tags:     []string{"exposure", "PEP", "emergency", "testing"},
	},
	{
		ID:       "2",
		Category: "Testing & Diagnosis",
		Question: "How accurate are HIV tests?",
		Answer:   "Modern HIV tests are highly accurate. Fourth-generation tests can detect HIV as early as 2-4 weeks after exposure with over 99% accuracy. If you test negative after the window period (typically 3 months), the result is considered conclusive. However, if you've had recent exposure, it's important to test again after the window period. We're here to help you understand your results and next steps.",
		Tags:     []string{"testing", "accuracy", "window period", "diagnosis"},
	},
	{
		ID:       "3",
		Category: "Testing & Diagnosis",
		Question: "Where can I get tested confidentially?",
		Answer:   "You can get tested at many locations, including local health departments, community health centers, private doctors' offices, and some pharmacies. Many locations offer free or low-cost testing, and your results are confidential. Some places offer rapid testing with results in 20 minutes. We can help you find testing locations in your area that respect your privacy and provide supportive care.",
		Tags:     []string{"testing", "confidential", "locations", "privacy"},
	},
	{
		ID:       "4",
		Category: "Prevention & PrEP",
		Question: "What is PrEP and should I consider it?",
		Answer:   "PrEP (Pre-Exposure Prophylaxis) is a daily medication that can significantly reduce your risk of getting HIV through sex or injection drug use. When taken consistently, PrEP is up to 99% effective at preventing HIV. It's recommended for people who are at higher risk of HIV exposure. Talking with a healthcare provider can help you determine if PrEP is right for you. There's no judgment here, taking care of your health is important, and PrEP is a valid prevention option.",
		Tags:     []string{"PrEP", "prevention", "medication", "protection"},
	},
	{
		ID:       "5",
		Category: "Treatment & Medication",
		Question: "What are the side effects of HIV medication?",
		Answer:   "Modern HIV medications are generally well-tolerated, and many people experience few or no side effects. When side effects do occur, they're often mild and temporary, such as nausea, fatigue, or headaches during the first few weeks. Serious side effects are rare. Your healthcare provider will work with you to find a medication regimen that works for your body. If you're experiencing side effects, it's important to communicate with your care team so they can help adjust your treatment.",
		Tags:     []string{"medication", "side effects", "treatment", "health"},
	},
	{
		ID:       "6",
		Category: "Treatment & Medication",
		Question: "Is HIV treatment free or covered by insurance?",
		Answer:   "HIV treatment is often covered by insurance, including Medicaid and Medicare. There are also assistance programs available for those who are uninsured or underinsured, such as the Ryan White HIV/AIDS Program, pharmaceutical patient assistance programs, and state AIDS Drug Assistance Programs (ADAP). Many clinics offer sliding scale fees based on income. You don't have to navigate this alone, and we can help connect you with resources to access the care you need.",
		Tags:     []string{"insurance", "cost", "financial assistance", "treatment"},
	},
	{
		ID:       "7",
		Category: "Living with HIV",
		Question: "Can I live a normal life with HIV?",
		Answer:   "Yes, absolutely. With modern treatment, people living with HIV can live long, healthy, and fulfilling lives. Effective HIV medication (antiretroviral therapy) can reduce the amount of virus in your body to undetectable levels, which means you can't transmit HIV to others and can maintain good health. Many people with HIV work, have relationships, start families, and pursue their dreams. Your diagnosis doesn't define you, and there's a whole community of people living full, vibrant lives with HIV.",
		Tags:     []string{"living with HIV", "normal life", "health", "hope"},
	},
	{
		ID:       "8",
		Category: "Living with HIV",
		Question: "How do I tell my partner about my status?",
		Answer:   "Disclosing your HIV status to a partner can feel overwhelming, and there's no one 'right' way to do it. Choose a private, comfortable setting when you both have time to talk. You might want to prepare what you'll say, and remember that you're sharing important health information, not asking for forgiveness. If you're on effective treatment and undetectable, you can share that you can't transmit HIV. Some people find it helpful to bring educational materials. Remember, you deserve respect and support. If you need help preparing for this conversation, we're here to support you.",
		Tags:     []string{"disclosure", "partner", "relationships", "communication"},
	},
	{
		ID:       "9",
		Category: "Support Resources",
		Question: "Where can I find emotional support?",
		Answer:   "You don't have to navigate this alone. There are many sources of support available, including support groups (both in-person and online), mental health counselors who specialize in HIV care, peer navigators, and crisis hotlines. Many organizations offer free or low-cost counseling services. Connecting with others who understand your experience can be incredibly valuable. We're here to help you find the support that feels right for you.",
		Tags:     []string{"support", "emotional", "counseling", "community"},
	},
	{
		ID:       "10",
		Category: "Support Resources",
		Question: "What legal protections exist for people living with HIV?",
		Answer:   "People living with HIV are protected by the Americans with Disabilities Act (ADA), which prohibits discrimination in employment, housing, and public accommodations. Your HIV status is confidential medical information, and healthcare providers are required to protect your privacy under HIPAA. Laws vary by state regarding disclosure requirements to sexual partners. If you're facing discrimination or have questions about your rights, legal aid organizations can provide guidance and support.",
		Tags:     []string{"legal", "rights", "discrimination", "privacy"},
	},
	{
		ID:       "11",
		Category: "Prevention & PrEP",
		Question: "How do I start PrEP?",
		Answer:   "Starting PrEP involves a few steps: first, you'll need to see a healthcare provider who can prescribe it. They'll test you for HIV (to confirm you're negative) and check your kidney function. If PrEP is right for you, they'll write a prescription. Many insurance plans cover PrEP, and there are assistance programs if cost is a concern. Once you start, you'll take one pill daily. Your provider will want to see you every few months for follow-up testing and to ensure everything is going well. Taking this step to protect your health is something to be proud of.",
		Tags:     []string{"PrEP", "starting", "prescription", "healthcare"},
	},
	{
		ID:       "12",
		Category: "Living with HIV",
		Question: "Can I have children if I'm living with HIV?",
		Answer:   "Yes, people living with HIV can have healthy children. With proper medical care and treatment, the risk of transmitting HIV to your baby during pregnancy or childbirth is less than 1%. This involves taking HIV medication during pregnancy, potentially adjusting your treatment plan, and sometimes using formula instead of breastfeeding (depending on your situation and location). Many people living with HIV have become parents and have healthy, HIV-negative children. If you're considering starting a family, talking with an HIV specialist who has experience with pregnancy care is important.",
		Tags:     []string{"pregnancy", "children", "family", "transmission"},
	},
}

// All returns the full FAQ catalog
func All() []Item {
	return items
}

// Search returns every item whose question, answer, or tags contain the
// query, case-insensitively. An empty query returns the full catalog.
func Search(query string) []Item {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return items
	}

	var matches []Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Question), query) ||
			strings.Contains(strings.ToLower(item.Answer), query) ||
			tagMatch(item.Tags, query) {
			matches = append(matches, item)
		}
	}
	return matches
}

// ByCategory returns the items in one category
func ByCategory(category string) []Item {
	var matches []Item
	for _, item := range items {
		if item.Category == category {
			matches = append(matches, item)
		}
	}
	return matches
}

func tagMatch(tags []string, query string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
