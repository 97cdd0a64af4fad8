package netease

// QualityLevel один уровень качества из меню выбора
type QualityLevel struct {
	Choice string // пункт меню "1".."9"
	Level  string // значение параметра level для API
	Label  string // название уровня в терминах NetEase
}

// QualityLevels упорядоченный список уровней качества, как в меню выбора
var QualityLevels = []QualityLevel{
	{"1", "standard", "标准"},
	{"2", "higher", "较高"},
	{"3", "exhigh", "极高"},
	{"4", "lossless", "无损"},
	{"5", "hires", "Hi-Res"},
	{"6", "jyeffect", "高清环绕声"},
	{"7", "sky", "沉浸环绕声"},
	{"8", "dolby", "杜比全景声"},
	{"9", "jymaster", "超清母带"},
}

// QualityByChoice возвращает уровень качества по номеру пункта меню
func QualityByChoice(choice string) (string, bool) {
	for _, q := range QualityLevels {
		if q.Choice == choice {
			return q.Level, true
		}
	}
	return "", false
}

// IsValidQuality сообщает, известен ли API такой уровень качества
func IsValidQuality(level string) bool {
	for _, q := range QualityLevels {
		if q.Level == level {
			return true
		}
	}
	return false
}
