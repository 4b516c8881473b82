package question

// Pool mode names.
const (
	ModeStandard  = "standard"
	ModeAlternate = "alternate"
)

// Question is one multiple-choice entry served to a player. Answer is the
// index into Options.
type Question struct {
	ID         int      `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	Answer     int      `json:"answer"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
}

// Pool is an ordered set of questions for one mode.
type Pool []Question

// Difficulty constants.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// StandardPool is the default question set.
func StandardPool() Pool {
	return Pool{
		{ID: 1, Prompt: "What is the chemical symbol for gold?", Options: []string{"Au", "Ag", "Gd", "Go"}, Answer: 0, Category: "science", Difficulty: DifficultyEasy},
		{ID: 2, Prompt: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Mercury"}, Answer: 1, Category: "science", Difficulty: DifficultyEasy},
		{ID: 3, Prompt: "What gas do plants absorb from the atmosphere?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"}, Answer: 2, Category: "science", Difficulty: DifficultyEasy},
		{ID: 4, Prompt: "In which year did World War II end?", Options: []string{"1943", "1944", "1945", "1946"}, Answer: 2, Category: "history", Difficulty: DifficultyEasy},
		{ID: 5, Prompt: "Who was the first president of the United States?", Options: []string{"Thomas Jefferson", "George Washington", "John Adams", "Benjamin Franklin"}, Answer: 1, Category: "history", Difficulty: DifficultyEasy},
		{ID: 6, Prompt: "Which empire built the Colosseum?", Options: []string{"Greek", "Ottoman", "Roman", "Byzantine"}, Answer: 2, Category: "history", Difficulty: DifficultyMedium},
		{ID: 7, Prompt: "What is the capital of Australia?", Options: []string{"Sydney", "Melbourne", "Canberra", "Perth"}, Answer: 2, Category: "geography", Difficulty: DifficultyMedium},
		{ID: 8, Prompt: "Which is the longest river in the world?", Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, Answer: 1, Category: "geography", Difficulty: DifficultyMedium},
		{ID: 9, Prompt: "Which desert is the largest hot desert on Earth?", Options: []string{"Gobi", "Kalahari", "Sahara", "Atacama"}, Answer: 2, Category: "geography", Difficulty: DifficultyEasy},
		{ID: 10, Prompt: "How many players are on a soccer team on the field?", Options: []string{"9", "10", "11", "12"}, Answer: 2, Category: "sports", Difficulty: DifficultyEasy},
		{ID: 11, Prompt: "In which sport would you perform a slam dunk?", Options: []string{"Volleyball", "Basketball", "Tennis", "Badminton"}, Answer: 1, Category: "sports", Difficulty: DifficultyEasy},
		{ID: 12, Prompt: "Who painted the Mona Lisa?", Options: []string{"Michelangelo", "Raphael", "Leonardo da Vinci", "Donatello"}, Answer: 2, Category: "art", Difficulty: DifficultyEasy},
	}
}

// AlternatePool is the second question set toggled from the menu.
func AlternatePool() Pool {
	return Pool{
		{ID: 101, Prompt: "What is the hardest natural substance on Earth?", Options: []string{"Quartz", "Diamond", "Topaz", "Obsidian"}, Answer: 1, Category: "science", Difficulty: DifficultyMedium},
		{ID: 102, Prompt: "What part of the cell contains genetic material?", Options: []string{"Ribosome", "Mitochondrion", "Nucleus", "Membrane"}, Answer: 2, Category: "science", Difficulty: DifficultyMedium},
		{ID: 103, Prompt: "What is the speed of light, approximately?", Options: []string{"300,000 km/s", "150,000 km/s", "1,000,000 km/s", "30,000 km/s"}, Answer: 0, Category: "science", Difficulty: DifficultyHard},
		{ID: 104, Prompt: "Who wrote the Declaration of Independence?", Options: []string{"George Washington", "Thomas Jefferson", "James Madison", "Alexander Hamilton"}, Answer: 1, Category: "history", Difficulty: DifficultyMedium},
		{ID: 105, Prompt: "Which ancient wonder stood in Alexandria?", Options: []string{"Hanging Gardens", "The Lighthouse", "The Colossus", "The Mausoleum"}, Answer: 1, Category: "history", Difficulty: DifficultyHard},
		{ID: 106, Prompt: "The Berlin Wall fell in which year?", Options: []string{"1987", "1988", "1989", "1991"}, Answer: 2, Category: "history", Difficulty: DifficultyMedium},
		{ID: 107, Prompt: "Which country has the most time zones?", Options: []string{"Russia", "USA", "France", "China"}, Answer: 2, Category: "geography", Difficulty: DifficultyHard},
		{ID: 108, Prompt: "Mount Kilimanjaro is located in which country?", Options: []string{"Kenya", "Tanzania", "Uganda", "Ethiopia"}, Answer: 1, Category: "geography", Difficulty: DifficultyMedium},
		{ID: 109, Prompt: "Which ocean is the deepest?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, Answer: 3, Category: "geography", Difficulty: DifficultyEasy},
		{ID: 110, Prompt: "How many rings are on the Olympic flag?", Options: []string{"4", "5", "6", "7"}, Answer: 1, Category: "sports", Difficulty: DifficultyEasy},
		{ID: 111, Prompt: "In tennis, what score comes after deuce?", Options: []string{"Match point", "Advantage", "Break point", "Set point"}, Answer: 1, Category: "sports", Difficulty: DifficultyMedium},
		{ID: 112, Prompt: "Which composer wrote the Ninth Symphony while deaf?", Options: []string{"Mozart", "Bach", "Beethoven", "Brahms"}, Answer: 2, Category: "art", Difficulty: DifficultyMedium},
	}
}
