package feature

// IGDB 枚举：类型（genres）。
var igdbGenres = []Term{
	{2, "Point-and-click"},
	{4, "Fighting"},
	{5, "Shooter"},
	{7, "Music"},
	{8, "Platform"},
	{9, "Puzzle"},
	{10, "Racing"},
	{11, "Real Time Strategy (RTS)"},
	{12, "Role-playing (RPG)"},
	{13, "Simulator"},
	{14, "Sport"},
	{15, "Strategy"},
	{16, "Turn-based strategy (TBS)"},
	{24, "Tactical"},
	{25, "Hack and slash/Beat 'em up"},
	{26, "Quiz/Trivia"},
	{30, "Pinball"},
	{31, "Adventure"},
	{32, "Indie"},
	{33, "Arcade"},
	{34, "Visual Novel"},
	{35, "Card & Board Game"},
	{36, "MOBA"},
}

// IGDB 枚举：主题（themes）。
var igdbThemes = []Term{
	{1, "Action"},
	{17, "Fantasy"},
	{18, "Science fiction"},
	{19, "Horror"},
	{20, "Thriller"},
	{21, "Survival"},
	{22, "Historical"},
	{23, "Stealth"},
	{27, "Comedy"},
	{28, "Business"},
	{31, "Drama"},
	{32, "Non-fiction"},
	{33, "Sandbox"},
	{34, "Educational"},
	{35, "Kids"},
	{38, "Open world"},
	{39, "Warfare"},
	{40, "Party"},
	{41, "4X (explore, expand, exploit, and exterminate)"},
	{42, "Erotic"},
	{43, "Mystery"},
	{44, "Romance"},
}

// IGDB 枚举：玩家视角（player_perspectives）。
var igdbPerspectives = []Term{
	{1, "First person"},
	{2, "Third person"},
	{3, "Bird view / Isometric"},
	{4, "Side view"},
	{5, "Text"},
	{6, "Auditory"},
	{7, "Virtual Reality"},
}

var defaultGameVocabulary = MustVocabulary(igdbGenres, igdbThemes, igdbPerspectives)

// DefaultGameVocabulary 返回基于 IGDB 枚举的默认词表（23 + 22 + 7 = 52 列）。
func DefaultGameVocabulary() *Vocabulary {
	return defaultGameVocabulary
}
