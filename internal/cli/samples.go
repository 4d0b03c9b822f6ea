package cli

import "nursing-quiz-service/internal/domain"

// sampleQuestions backs the server when no postgres or upstream is configured.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "rn-001",
			ExamType:      "nclex-rn",
			Question:      "A client receiving furosemide reports muscle weakness and leg cramps. Which lab value should the nurse check first?",
			Options:       []string{"Sodium", "Potassium", "Calcium", "Magnesium"},
			CorrectAnswer: "Potassium",
			Explanation:   "Loop diuretics waste potassium; weakness and cramps suggest hypokalemia.",
			Difficulty:    domain.DifficultyIntermediate,
			Category:      "Pharmacological Therapies",
		},
		{
			ID:            "rn-002",
			ExamType:      "nclex-rn",
			Question:      "Which finding in a client two hours after a thyroidectomy requires immediate action?",
			Options:       []string{"Hoarse voice", "Incisional pain of 4/10", "Tingling around the mouth", "Temperature of 37.4 C"},
			CorrectAnswer: "Tingling around the mouth",
			Explanation:   "Perioral tingling signals hypocalcemia from parathyroid injury.",
			Difficulty:    domain.DifficultyIntermediate,
			Category:      "Reduction of Risk Potential",
		},
		{
			ID:            "rn-003",
			ExamType:      "nclex-rn",
			Question:      "The nurse is delegating tasks. Which task is appropriate for unlicensed assistive personnel?",
			Options:       []string{"Assessing a new admission", "Teaching insulin injection", "Measuring intake and output", "Evaluating pain relief"},
			CorrectAnswer: "Measuring intake and output",
			Explanation:   "Assessment, teaching and evaluation stay with the registered nurse.",
			Difficulty:    domain.DifficultyBeginner,
			Category:      "Management of Care",
		},
		{
			ID:            "rn-004",
			ExamType:      "nclex-rn",
			Question:      "A client with a chest tube has continuous bubbling in the water seal chamber. What does this indicate?",
			Options:       []string{"Normal function", "An air leak in the system", "The lung has re-expanded", "Suction is set too low"},
			CorrectAnswer: "An air leak in the system",
			Explanation:   "Continuous bubbling in the water seal chamber means air is entering the system.",
			Difficulty:    domain.DifficultyAdvanced,
			Category:      "Physiological Adaptation",
		},
		{
			ID:            "rn-005",
			ExamType:      "nclex-rn",
			Question:      "Which position is best for a client in respiratory distress?",
			Options:       []string{"Supine", "Prone", "High Fowler's", "Trendelenburg"},
			CorrectAnswer: "High Fowler's",
			Explanation:   "Sitting upright allows maximal lung expansion.",
			Difficulty:    domain.DifficultyIntermediate,
			Category:      "Basic Care and Comfort",
		},
		{
			ID:            "pn-001",
			ExamType:      "nclex-pn",
			Question:      "Before giving digoxin, the nurse should assess which of the following?",
			Options:       []string{"Blood pressure", "Apical pulse", "Respiratory rate", "Temperature"},
			CorrectAnswer: "Apical pulse",
			Explanation:   "Hold digoxin when the apical pulse is below 60 in adults.",
			Difficulty:    domain.DifficultyIntermediate,
			Category:      "Pharmacological Therapies",
		},
		{
			ID:            "pn-002",
			ExamType:      "nclex-pn",
			Question:      "What is the correct order for donning personal protective equipment?",
			Options:       []string{"Gloves, gown, mask, goggles", "Gown, mask, goggles, gloves", "Mask, gloves, gown, goggles", "Goggles, gown, gloves, mask"},
			CorrectAnswer: "Gown, mask, goggles, gloves",
			Explanation:   "Gloves go on last so they cover the gown cuffs.",
			Difficulty:    domain.DifficultyBeginner,
			Category:      "Safety and Infection Control",
		},
	}
}
