// Package lyrics turns raw scraped lyric text into catalog-ready values.
//
// Raw text from lyric sites carries contributor headers, "Read More" teasers,
// and page markers that would skew sentiment analysis. Clean strips those
// artifacts. ClassifyIntegrity buckets the cleaned text so the pipeline can
// tell real lyrics apart from instrumental tags, truncated fragments, and
// prose descriptions of a song. Analyze produces the lexicon-based valence
// and arousal estimates used as the last link in the sentiment chain.
package lyrics
