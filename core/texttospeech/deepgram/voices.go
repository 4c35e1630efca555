package deepgram

import "github.com/koscakluka/ema-voice/core/language"

type deepgramVoice string

// Voice converts a configured voice name.
func Voice(name string) deepgramVoice { return deepgramVoice(name) }

const (
	VoiceAsteria   deepgramVoice = "aura-asteria-en"
	VoiceLuna      deepgramVoice = "aura-luna-en"
	VoiceOrion     deepgramVoice = "aura-orion-en"
	VoiceThalia    deepgramVoice = "aura-2-thalia-en"
	VoiceAndromeda deepgramVoice = "aura-2-andromeda-en"

	defaultVoice = VoiceAsteria
)

var voiceLanguages = map[deepgramVoice]language.Tag{
	VoiceAsteria:   language.English,
	VoiceLuna:      language.English,
	VoiceOrion:     language.English,
	VoiceThalia:    language.English,
	VoiceAndromeda: language.English,
}

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{VoiceAsteria, VoiceLuna, VoiceOrion, VoiceThalia, VoiceAndromeda}
}

// Language is the language the voice speaks.
func (v deepgramVoice) Language() language.Tag {
	return voiceLanguages[v]
}
