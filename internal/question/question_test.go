package question

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "latin question mark", text: "How are you?", want: true},
		{name: "plain statement", text: "Nice!", want: false},
		{name: "chinese why without punctuation", text: "为什么呢", want: true},
		{name: "fullwidth question mark", text: "真的吗？", want: true},
		{name: "english lead word upper case", text: "WHY would anyone do this", want: true},
		{name: "how as lead word", text: "how to reproduce this", want: true},
		{name: "could phrasing", text: "Could be worth a try", want: true},
		{name: "can you phrase", text: "can you share the config", want: true},
		{name: "is there phrase", text: "Is there a workaround", want: true},
		{name: "chinese polite ask", text: "请问这个支持Linux吗", want: true},
		{name: "substring match inside word", text: "This does the trick", want: true},
		{name: "empty string", text: "", want: false},
		{name: "no markers at all", text: "Shipped it yesterday. Great release.", want: false},
		{name: "emoji only", text: "🔥🔥🔥", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsQuestion(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("IsQuestion(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}
