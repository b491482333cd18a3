package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/contre95/lyricsvault/src/features/config"
	"github.com/contre95/lyricsvault/src/music"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

const lrclibTrack = `{
	"id": 3396226,
	"trackName": "I Want to Live",
	"artistName": "Borislav Slavov",
	"albumName": "Baldur's Gate 3",
	"duration": 233,
	"instrumental": false,
	"plainLyrics": "I feel your breath upon my neck\nA soft caress",
	"syncedLyrics": "[ar:Borislav Slavov]\n[ti:I Want to Live]\n[00:17.12] I feel your breath upon my neck\n[00:20.48] A soft caress\n"
}`

func TestLRCLibFetch_Plain(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://lrclib.net/api/get", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Borislav Slavov", req.URL.Query().Get("artist_name"))
		assert.Equal(t, "I Want to Live", req.URL.Query().Get("track_name"))
		return httpmock.NewStringResponse(http.StatusOK, lrclibTrack), nil
	})

	lyrics, err := NewLRCLibProvider(false).Fetch(context.Background(), "Borislav Slavov", "I Want to Live")
	require.NoError(t, err)
	require.NotNil(t, lyrics)
	assert.Equal(t, music.SourceLRCLib, lyrics.Source)
	assert.Equal(t, "I feel your breath upon my neck\nA soft caress", lyrics.Lyrics)
	assert.False(t, lyrics.Timestamps)
}

func TestLRCLibFetch_PreferSynced(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://lrclib.net/api/get", httpmock.NewStringResponder(http.StatusOK, lrclibTrack))

	lyrics, err := NewLRCLibProvider(true).Fetch(context.Background(), "Borislav Slavov", "I Want to Live")
	require.NoError(t, err)
	require.NotNil(t, lyrics)
	assert.True(t, lyrics.Timestamps)
	assert.Equal(t, "[00:17] I feel your breath upon my neck\n[00:20] A soft caress", lyrics.Lyrics)
}

func TestLRCLibFetch_NotFound(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://lrclib.net/api/get",
		httpmock.NewStringResponder(http.StatusNotFound, `{"code":404,"name":"TrackNotFound"}`))

	lyrics, err := NewLRCLibProvider(false).Fetch(context.Background(), "Nobody", "Nothing")
	assert.NoError(t, err)
	assert.Nil(t, lyrics)
}

func TestLRCLibFetch_ServerError(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://lrclib.net/api/get", httpmock.NewStringResponder(http.StatusBadGateway, ""))

	_, err := NewLRCLibProvider(false).Fetch(context.Background(), "A", "T")
	assert.Error(t, err)
}

func TestLRCLibSearch(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://lrclib.net/api/search", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "i want to live", req.URL.Query().Get("q"))
		return httpmock.NewStringResponse(http.StatusOK, "["+lrclibTrack+"]"), nil
	})

	results, err := NewLRCLibProvider(false).Search(context.Background(), "i want to live")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Borislav Slavov", results[0].Artist)
	assert.Equal(t, "I Want to Live", results[0].Title)
}

func TestLRCLibSearch_Empty(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://lrclib.net/api/search", httpmock.NewStringResponder(http.StatusOK, "[]"))

	results, err := NewLRCLibProvider(false).Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestNormalizeSynced(t *testing.T) {
	in := "[offset:+100]\r\n[00:01.50] one\r\n\r\n[01:02:33] two\n[10:00.123]"
	assert.Equal(t, "[00:01] one\n[01:02] two\n[10:00]", normalizeSynced(in))
}

const geniusSearch = `{"meta":{"status":200},"response":{"hits":[
	{"type":"song","result":{"id":1,"title":"Bohemian Rhapsody","artist_names":"Panic! at the Disco","path":"/Panic-at-the-disco-bohemian-rhapsody-lyrics","primary_artist":{"name":"Panic! at the Disco"}}},
	{"type":"song","result":{"id":2,"title":"Bohemian Rhapsody","artist_names":"Queen","path":"/Queen-bohemian-rhapsody-lyrics","url":"https://genius.com/Queen-bohemian-rhapsody-lyrics","primary_artist":{"name":"Queen"}}}
]}}`

const geniusPage = `<html><body><h1>Genius</h1>
<div class="Lyrics__Container" data-lyrics-container="true">
	<div data-exclude-from-selection="true"><span>12 Contributors</span></div>
	<a href="/123/Queen-bohemian-rhapsody/Is-this-the-real-life"><span>Is this the real life?</span></a><br/>Is this just fantasy?
</div>
<div class="other">Sign up</div>
<div data-lyrics-container="true">Caught in a landslide<br/>No escape from reality</div>
</body></html>`

func TestGeniusFetch_PrefersMatchingArtist(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://genius.com/api/search", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bohemian Rhapsody Queen", req.URL.Query().Get("q"))
		return httpmock.NewStringResponse(http.StatusOK, geniusSearch), nil
	})
	httpmock.RegisterResponder("GET", "https://genius.com/Queen-bohemian-rhapsody-lyrics", httpmock.NewStringResponder(http.StatusOK, geniusPage))

	lyrics, err := NewGeniusProvider("").Fetch(context.Background(), "queen", "Bohemian Rhapsody")
	require.NoError(t, err)
	require.NotNil(t, lyrics)
	assert.Equal(t, music.SourceGenius, lyrics.Source)
	assert.Equal(t, "queen", lyrics.Artist)
	assert.Contains(t, lyrics.Lyrics, "Is this the real life?")
	assert.Contains(t, lyrics.Lyrics, "Is this just fantasy?")
	assert.Contains(t, lyrics.Lyrics, "No escape from reality")
	assert.NotContains(t, lyrics.Lyrics, "Contributors")
	assert.NotContains(t, lyrics.Lyrics, "Sign up")
	assert.NotContains(t, lyrics.Lyrics, "<")
}

func TestExtractLyricsFromHTML(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "comment containing a closing div",
			page: `<div data-lyrics-container="true">First line<br/><!-- ad slot </div> -->Second line<br/>Third line</div>`,
			want: "First line\nSecond line\nThird line",
		},
		{
			name: "angle bracket inside an attribute",
			page: `<div title="a>b" data-lyrics-container="true">Only line</div>`,
			want: "Only line",
		},
		{
			name: "nested excluded block",
			page: `<div data-lyrics-container="true"><div><div data-exclude-from-selection="true">Ad</div>Kept</div></div>`,
			want: "Kept",
		},
		{
			name: "no container",
			page: `<div class="lyrics">Not marked</div>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractLyricsFromHTML(tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeniusFetch_NoHits(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://genius.com/api/search",
		httpmock.NewStringResponder(http.StatusOK, `{"response":{"hits":[]}}`))

	lyrics, err := NewGeniusProvider("").Fetch(context.Background(), "Nobody", "Nothing")
	assert.NoError(t, err)
	assert.Nil(t, lyrics)
}

func TestGeniusFetch_PageError(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://genius.com/api/search", httpmock.NewStringResponder(http.StatusOK, geniusSearch))
	httpmock.RegisterResponder("GET", "https://genius.com/Queen-bohemian-rhapsody-lyrics", httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := NewGeniusProvider("").Fetch(context.Background(), "Queen", "Bohemian Rhapsody")
	assert.Error(t, err)
}

func TestGeniusSearch_AuthenticatedHitsHaveNoLyrics(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://api.genius.com/search", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer token-123", req.Header.Get("Authorization"))
		return httpmock.NewStringResponse(http.StatusOK, geniusSearch), nil
	})

	results, err := NewGeniusProvider("token-123").Search(context.Background(), "bohemian")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Panic! at the Disco", results[0].Artist)
	assert.Equal(t, "Queen", results[1].Artist)
	for _, r := range results {
		assert.Empty(t, r.Lyrics)
		assert.Equal(t, music.SourceGenius, r.Source)
	}
}

func TestFromConfig(t *testing.T) {
	store := &stubStore{}
	chain, err := FromConfig([]config.LyricsProvider{
		{Name: "genius", Enabled: true, Secret: "s"},
		{Name: "lrclib", Enabled: false},
		{Name: "local", Enabled: true},
	}, store)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.IsType(t, &GeniusProvider{}, chain[0])
	assert.Same(t, store, chain[1])

	_, err = FromConfig([]config.LyricsProvider{{Name: "azlyrics", Enabled: true}}, store)
	assert.Error(t, err)
}

type stubStore struct{ music.LyricsStore }
