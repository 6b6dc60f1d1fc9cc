package stats

import (
	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
	"github.com/otherjamesbrown/moodsense/pkg/textnorm"
)

// Report is the full set of statistics for one chat.
type Report struct {
	Metadata                   chat.Metadata                               `json:"metadata" yaml:"metadata"`
	UserEmotionStats           map[string]map[enrichment.Label]EmotionStat `json:"user_emotion_stats" yaml:"user_emotion_stats"`
	OverallEmotionDistribution map[enrichment.Label]EmotionStat            `json:"overall_emotion_distribution" yaml:"overall_emotion_distribution"`
	OverallSentimentAvg        float64                                     `json:"overall_sentiment_avg" yaml:"overall_sentiment_avg"`
	MessagesPerDay             float64                                     `json:"messages_per_day" yaml:"messages_per_day"`
	HourlyDistribution         map[string]int                              `json:"hourly_distribution" yaml:"hourly_distribution"`
	WeekdayDistribution        map[string]WeekdayBucket                    `json:"weekday_distribution" yaml:"weekday_distribution"`
	LongestStreak              Streak                                      `json:"longest_streak" yaml:"longest_streak"`
	MessagesPerUser            map[string]int                              `json:"messages_per_user" yaml:"messages_per_user"`
	AvgMessageLengthPerUser    map[string]float64                          `json:"avg_message_length_per_user" yaml:"avg_message_length_per_user"`
	TopEmojisPerUser           map[string][]EmojiCount                     `json:"top_emojis_per_user" yaml:"top_emojis_per_user"`
	TopWordsPerUser            map[string][]WordCount                      `json:"top_words_per_user" yaml:"top_words_per_user"`
}

// Options tune Compute.
type Options struct {
	TopEmojis  int
	TopWords   int
	Normalizer textnorm.Normalizer
}

// DefaultOptions returns the default ranking sizes and the dictionary lemmatizer.
func DefaultOptions() Options {
	return Options{
		TopEmojis:  DefaultTopEmojis,
		TopWords:   DefaultTopWords,
		Normalizer: textnorm.NewLemmatizer(),
	}
}

// Compute assembles every statistic for msgs.
func Compute(msgs []enrichment.Message, meta chat.Metadata, opts Options) Report {
	if opts.Normalizer == nil {
		opts.Normalizer = textnorm.NewLemmatizer()
	}
	return Report{
		Metadata:                   meta,
		UserEmotionStats:           UserEmotionStats(msgs, meta.Users),
		OverallEmotionDistribution: EmotionStats(msgs, ""),
		OverallSentimentAvg:        OverallSentimentAverage(msgs),
		MessagesPerDay:             AverageMessagesPerDay(meta),
		HourlyDistribution:         HourlyDistribution(msgs),
		WeekdayDistribution:        WeekdayDistribution(msgs, meta),
		LongestStreak:              LongestStreak(msgs, meta),
		MessagesPerUser:            MessagesPerUser(msgs, meta),
		AvgMessageLengthPerUser:    AverageLengthPerUser(msgs, meta),
		TopEmojisPerUser:           TopEmojis(msgs, meta, opts.TopEmojis),
		TopWordsPerUser:            TopWords(msgs, meta, opts.Normalizer, opts.TopWords),
	}
}
