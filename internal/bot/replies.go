package bot

// Fixed user-facing phrases. The bot speaks Japanese only; there is no
// localization layer.
const (
	// HungryPrompt answers a recognized hunger phrase.
	HungryPrompt = "位置情報を送ってくれたら、近くの美味しいお店を探すよ！"
	// DefaultPrompt answers any other text message.
	DefaultPrompt = "「腹減った」と送るか、位置情報を共有してね！"
	// ApologyText answers a location event when no venues could be found.
	ApologyText = "ごめんなさい、近くにお店が見つかりませんでした…別の場所でもう一度試してみてね。"
	// CarouselAltText is shown by clients that cannot render the carousel.
	CarouselAltText = "近くのおすすめのお店です"
)

// hungerPhrases are the exact texts that trigger the hunger-specific prompt.
var hungerPhrases = []string{
	"腹減った",
	"はらへった",
	"お腹すいた",
	"おなかすいた",
}

// CannedReply returns the canned response for a text message. Each hunger
// phrase is compared individually and must match exactly; everything else falls
// through to the default prompt.
func CannedReply(text string) string {
	for _, phrase := range hungerPhrases {
		if text == phrase {
			return HungryPrompt
		}
	}

	return DefaultPrompt
}
