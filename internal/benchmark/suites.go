// In file: internal/benchmark/suites.go
package benchmark

import "strings"

// LAMA tests factual recall with cloze statements. The mask is replaced by a
// question mark phrase before asking.
var LAMA = Suite{
	Name:  "lama",
	Title: "LAMA",
	Prepare: func(question string) string {
		return strings.ReplaceAll(question, "[MASK]", "what?")
	},
	Items: []Item{
		{Question: "The capital of France is [MASK].", Answers: []string{"Paris"}},
		{Question: "The largest planet in our solar system is [MASK].", Answers: []string{"Jupiter"}},
		{Question: "The chemical symbol for gold is [MASK].", Answers: []string{"Au"}},
		{Question: "The author of 'Romeo and Juliet' is [MASK].", Answers: []string{"William Shakespeare", "Shakespeare"}},
		{Question: "The longest river in the world is [MASK].", Answers: []string{"Nile", "Amazon"}},
		{Question: "The largest ocean on Earth is the [MASK] Ocean.", Answers: []string{"Pacific"}},
		{Question: "The process by which plants make food is called [MASK].", Answers: []string{"photosynthesis"}},
		{Question: "The hardest natural substance on Earth is [MASK].", Answers: []string{"diamond"}},
		{Question: "The country with the largest population in the world is [MASK].", Answers: []string{"China", "India"}},
		{Question: "The smallest bone in the human body is located in the [MASK].", Answers: []string{"ear"}},
	},
}

// GSM8K samples grade-school word problems; each has a single numeric answer.
var GSM8K = Suite{
	Name:  "gsm8k",
	Title: "GSM8K",
	Items: []Item{
		{
			Question: "Natalia sold clips to 48 of her friends in April, and then she sold half as many clips in May. How many clips did Natalia sell altogether in April and May?",
			Answers:  []string{"72"},
		},
		{
			Question: "Weng earns $12 an hour for babysitting. Yesterday, she just did 50 minutes of babysitting. How much did she earn?",
			Answers:  []string{"10"},
		},
		{
			Question: "Betty is saving money for a new wallet which costs $100. Betty has only half of the money she needs. Her parents decided to give her $15 for that purpose, and her grandparents twice as much as her parents. How much more money does Betty need to buy the wallet?",
			Answers:  []string{"5"},
		},
		{
			Question: "James writes a 3-page letter to 2 different friends twice a week. How many pages does he write a year?",
			Answers:  []string{"624"},
		},
		{
			Question: "Julie is reading a 120-page book. Yesterday, she was able to read 12 pages and today, she read twice as many pages as yesterday. If she wants to read half of the remaining pages tomorrow, how many pages should she read?",
			Answers:  []string{"42"},
		},
	},
}
