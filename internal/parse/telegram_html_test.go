package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const htmlPart1 = `<!DOCTYPE html>
<html><head><title>Exported Data</title></head>
<body>
<div class="page_wrap">
 <div class="page_header"><div class="content"><div class="text bold">Weekend Plans</div></div></div>
 <div class="page_body chat_page"><div class="history">
  <div class="message service" id="message-1"><div class="body details">18 December 2025</div></div>
  <div class="message default clearfix" id="message1">
   <div class="body">
    <div class="pull_right date details" title="18.12.2025 23:19:05 UTC+03:00">23:19</div>
    <div class="from_name">Alice </div>
    <div class="text">Hello <strong>there</strong></div>
   </div>
  </div>
  <div class="message default clearfix joined" id="message2">
   <div class="body">
    <div class="pull_right date details" title="18.12.2025 23:20:00">23:20</div>
    <div class="media_wrap clearfix"><div class="media clearfix pull_left media_photo"></div></div>
   </div>
  </div>
  <div class="message default clearfix joined" id="message3">
   <div class="body">
    <div class="text">no date here</div>
   </div>
  </div>
 </div></div>
</div>
</body></html>`

const htmlPart2 = `<html><body>
<div class="page_header"><div class="content"><div class="text bold">Other Title</div></div></div>
<div class="message default clearfix joined" id="message4">
 <div class="body">
  <div class="pull_right date details" title="19.12.2025 08:00:00">08:00</div>
  <div class="text">still Alice</div>
 </div>
</div>
<div class="message default clearfix" id="message5">
 <div class="body">
  <div class="pull_right date details" title="19.12.2025 08:01:00">08:01</div>
  <div class="from_name">Bob</div>
  <div class="media_wrap clearfix"><div class="sticker"></div></div>
 </div>
</div>
<div class="message default clearfix joined" id="message6">
 <div class="body">
  <div class="pull_right date details" title="19.12.2025 08:02:00">08:02</div>
 </div>
</div>
</body></html>`

func TestParseTelegramHTML_RunningAuthorAcrossFiles(t *testing.T) {
	req := require.New(t)

	result, err := ParseTelegramHTML([]Input{
		{Name: "messages.html", Data: []byte(htmlPart1)},
		{Name: "messages2.html", Data: []byte(htmlPart2)},
	}, testOptions())
	req.NoError(err)

	req.Equal("Weekend Plans", result.ChatName)
	req.Len(result.Messages, 5)

	req.Equal("Alice", result.Messages[0].Author)
	req.Equal("Hello there", result.Messages[0].Content)
	req.Equal(time.Date(2025, 12, 18, 23, 19, 5, 0, time.UTC), result.Messages[0].Timestamp)

	req.Equal("Alice", result.Messages[1].Author)
	req.Equal("[Photo]", result.Messages[1].Content)

	// joined message at the top of the second file keeps the author from the first
	req.Equal("Alice", result.Messages[2].Author)
	req.Equal("still Alice", result.Messages[2].Content)
	req.Equal("messages2.html", result.Messages[2].SourceFile)

	req.Equal("Bob", result.Messages[3].Author)
	req.Equal("[Sticker]", result.Messages[3].Content)

	req.Equal("Bob", result.Messages[4].Author)
	req.Equal("[Unknown Attachment]", result.Messages[4].Content)
}

func TestParseTelegramHTML_UnknownAuthorBeforeFirstName(t *testing.T) {
	req := require.New(t)

	result, err := ParseTelegramHTML([]Input{{Name: "messages2.html", Data: []byte(htmlPart2)}}, testOptions())
	req.NoError(err)
	req.Equal("Other Title", result.ChatName)
	req.Equal(unknownAuthor, result.Messages[0].Author)
}

const htmlMedia = `<html><body>
<div class="message default clearfix" id="message10">
 <div class="body">
  <div class="pull_right date details" title="20.12.2025 09:00:00">09:00</div>
  <div class="from_name">Carol</div>
  <div class="media_wrap clearfix"><div class="media clearfix pull_left media_video"></div></div>
 </div>
</div>
<div class="message default service clearfix" id="message11">
 <div class="body">
  <div class="pull_right date details" title="20.12.2025 09:00:30">09:00</div>
  <div class="from_name">Dave</div>
  <div class="text">Dave joined the group</div>
 </div>
</div>
<div class="message default clearfix joined" id="message12">
 <div class="body">
  <div class="pull_right date details" title="20.12.2025 09:01:00">09:01</div>
  <div class="media_wrap clearfix"><div class="media clearfix pull_left media_voice_message"></div></div>
 </div>
</div>
<div class="message default clearfix joined" id="message13">
 <div class="body">
  <div class="pull_right date details" title="20.12.2025 09:02:00">09:02</div>
  <div class="media_wrap clearfix"><div class="media clearfix pull_left media_file"></div></div>
 </div>
</div>
</body></html>`

func TestParseTelegramHTML_ServiceAndMediaPlaceholders(t *testing.T) {
	req := require.New(t)

	result, err := ParseTelegramHTML([]Input{{Name: "messages.html", Data: []byte(htmlMedia)}}, testOptions())
	req.NoError(err)
	req.Len(result.Messages, 3)

	// the service entry is skipped and does not change the running author
	for _, m := range result.Messages {
		req.Equal("Carol", m.Author)
	}
	req.Equal("[Video]", result.Messages[0].Content)
	req.Equal("[Voice Message]", result.Messages[1].Content)
	req.Equal("[File]", result.Messages[2].Content)
	req.Equal(time.Date(2025, 12, 20, 9, 1, 0, 0, time.UTC), result.Messages[1].Timestamp)
}
