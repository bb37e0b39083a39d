package mathgame

// View is a snapshot of a session for presentation layers.
type View struct {
	SessionID     string  `json:"sessionId"`
	GameType      string  `json:"gameType"`
	Symbol        string  `json:"symbol"`
	OperandA      int     `json:"operandA"`
	OperandB      int     `json:"operandB"`
	Answers       []int   `json:"answers"`
	CorrectIndex  int     `json:"correctIndex"` // -1 unless ShowCorrect
	Score         int     `json:"score"`
	Points        int     `json:"points"`
	LastPoints    int     `json:"lastPoints"`
	Lives         int     `json:"lives"`
	Level         int     `json:"level"`
	TimeRemaining float64 `json:"timeRemaining"`
	State         State   `json:"state"`
	ShowCorrect   bool    `json:"showCorrect"`
	Blinking      bool    `json:"blinking"`
	Custom        bool    `json:"custom"`
	GameOver      bool    `json:"gameOver"`
}

// View returns the current snapshot. The correct answer is only revealed
// while feedback is shown.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID:     s.id,
		GameType:      s.op.GameType(),
		Symbol:        s.op.Symbol(),
		OperandA:      s.problem.OperandA,
		OperandB:      s.problem.OperandB,
		Answers:       make([]int, len(s.answers)),
		CorrectIndex:  -1,
		Score:         s.score,
		Points:        s.points,
		LastPoints:    s.lastPoints,
		Lives:         s.lives,
		Level:         s.level,
		TimeRemaining: s.timeRemaining().Seconds(),
		State:         s.state,
		ShowCorrect:   s.showCorrect,
		Blinking:      s.blinking,
		Custom:        s.custom != nil,
		GameOver:      s.state == StateGameOver,
	}

	for i, a := range s.answers {
		v.Answers[i] = a.Value
		if a.Correct && s.showCorrect {
			v.CorrectIndex = i
		}
	}

	return v
}
