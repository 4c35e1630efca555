package language

// Strings is the localized copy used by the controller for notices and the
// apology answer.
type Strings struct {
	NoAudio            string
	NoSpeech           string
	CouldNotTranscribe string
	MicDenied          string
	Apology            string
}

var catalog = map[Tag]Strings{
	English: {
		NoAudio:            "No audio captured. Check microphone.",
		NoSpeech:           "No speech detected. Speak louder.",
		CouldNotTranscribe: "Could not transcribe. Try again.",
		MicDenied:          "Mic access denied. Allow microphone access.",
		Apology:            "Sorry, I couldn't process that request.",
	},
	Hindi: {
		NoAudio:            "कोई ऑडियो नहीं मिला। माइक जांचें।",
		NoSpeech:           "आवाज़ नहीं मिली। ज़ोर से बोलें।",
		CouldNotTranscribe: "ट्रांसक्राइब नहीं हो सका।",
		MicDenied:          "माइक अनुमति अस्वीकृत।",
		Apology:            "क्षमा करें, मैं उस अनुरोध को संसाधित नहीं कर सका।",
	},
	Telugu: {
		NoAudio:            "ఆడియో రాలేదు. మైక్ తనిఖీ చేయండి.",
		NoSpeech:           "మాట గుర్తించలేదు. బిగ్గరగా చెప్పండి.",
		CouldNotTranscribe: "ట్రాన్స్‌క్రైబ్ కాలేదు.",
		MicDenied:          "మైక్ అనుమతి తిరస్కరించబడింది.",
		Apology:            "క్షమించండి, ఆ అభ్యర్థనను నేను ప్రాసెస్ చేయలేకపోయాను.",
	},
}

// Strings returns the copy for t, falling back to English.
func (t Tag) Strings() Strings {
	if strings, ok := catalog[t]; ok {
		return strings
	}
	return catalog[English]
}
