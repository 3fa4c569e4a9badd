package config

// Corpus source shapes
const (
	ShapeLabeled = "labeled"
	ShapeWide    = "wide"
	ShapeChunked = "chunked"
)

// Sentiment vocabularies of raw corpora
const (
	VocabularyNumericCode   = "numeric-code"
	VocabularyWordLabel     = "word-label"
	VocabularyBinaryCode    = "binary-code"
	VocabularyPreNormalized = "pre-normalized"
)

// CorpusSource describes how one raw labeled dataset is read and normalized.
// The six built-in corpora differ only in these fields.
type CorpusSource struct {
	ID              int      `yaml:"id" json:"id" validate:"required,min=1"`
	Name            string   `yaml:"name" json:"name" validate:"required"`
	File            string   `yaml:"file" json:"file" validate:"required"`
	Format          string   `yaml:"format" json:"format" validate:"omitempty,oneof=csv xlsx"`
	Sheet           string   `yaml:"sheet" json:"sheet,omitempty"`
	Delimiter       string   `yaml:"delimiter" json:"delimiter,omitempty" validate:"omitempty,len=1"`
	Encoding        string   `yaml:"encoding" json:"encoding,omitempty" validate:"omitempty,oneof=utf-8 latin1 windows-1252"`
	NoHeader        bool     `yaml:"no_header" json:"no_header,omitempty"`
	RenameColumns   []string `yaml:"rename_columns" json:"rename_columns,omitempty"`
	DropColumns     []string `yaml:"drop_columns" json:"drop_columns,omitempty"`
	TextColumn      string   `yaml:"text_column" json:"text_column,omitempty" validate:"required_unless=Shape wide"`
	SentimentColumn string   `yaml:"sentiment_column" json:"sentiment_column,omitempty" validate:"required_unless=Shape wide"`
	Shape           string   `yaml:"shape" json:"shape" validate:"required,oneof=labeled wide chunked"`
	ChunkSize       int      `yaml:"chunk_size" json:"chunk_size,omitempty" validate:"min=0"`
	Vocabulary      string   `yaml:"vocabulary" json:"vocabulary" validate:"required,oneof=numeric-code word-label binary-code pre-normalized"`
	Sentinel        string   `yaml:"sentinel" json:"sentinel,omitempty"`
}

// DelimiterRune returns the field delimiter, defaulting to a comma
func (s CorpusSource) DelimiterRune() rune {
	if s.Delimiter == "" {
		return ','
	}
	return []rune(s.Delimiter)[0]
}

// DefaultCorpora returns the built-in descriptors of the six labeled datasets
func DefaultCorpora() []CorpusSource {
	return []CorpusSource{
		{
			ID:              1,
			Name:            "apple-twitter-sentiment",
			File:            "Apple-Twitter-Sentiment-DFE.csv",
			TextColumn:      "text",
			SentimentColumn: "sentiment",
			Shape:           ShapeLabeled,
			Vocabulary:      VocabularyNumericCode,
			Sentinel:        "not_relevant",
		},
		{
			ID:              2,
			Name:            "financial-phrasebank",
			File:            "all-data.csv",
			Encoding:        "latin1",
			NoHeader:        true,
			RenameColumns:   []string{"sentiment", "text"},
			TextColumn:      "text",
			SentimentColumn: "sentiment",
			Shape:           ShapeLabeled,
			Vocabulary:      VocabularyWordLabel,
		},
		{
			ID:              3,
			Name:            "labelled-tweets-2020",
			File:            "tweets_labelled_09042020_16072020.csv",
			Delimiter:       ";",
			TextColumn:      "text",
			SentimentColumn: "sentiment",
			Shape:           ShapeLabeled,
			Vocabulary:      VocabularyWordLabel,
		},
		{
			ID:              4,
			Name:            "tweet-sample",
			File:            "twt_sample.csv",
			TextColumn:      "text",
			SentimentColumn: "sentiment",
			Shape:           ShapeLabeled,
			Vocabulary:      VocabularyWordLabel,
		},
		{
			ID:          5,
			Name:        "combined-news-djia",
			File:        "Combined_News_DJIA.csv",
			DropColumns: []string{"Date"},
			Shape:       ShapeWide,
			Vocabulary:  VocabularyBinaryCode,
		},
		{
			ID:              6,
			Name:            "news-headlines-2013",
			File:            "news_train_from2013.csv",
			TextColumn:      "headline",
			SentimentColumn: "sentimentClass",
			Shape:           ShapeChunked,
			ChunkSize:       DefaultChunkSize,
			Vocabulary:      VocabularyPreNormalized,
		},
	}
}
