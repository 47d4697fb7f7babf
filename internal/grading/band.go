package grading

// Band is the qualitative label shown next to a percentage score.
func Band(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excelent"
	case percentage >= 75:
		return "Foarte bine"
	case percentage >= 50:
		return "Bine"
	case percentage >= 30:
		return "Suficient"
	default:
		return "Insuficient"
	}
}
