package filename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		file string
		want Info
	}{
		{
			file: "Jane Smith_jane@example.com.ics",
			want: Info{Kind: KindPersonal, Name: "Jane Smith", Email: "jane@example.com", Category: CategoryBusiness},
		},
		{
			file: "Mom (p)_mom@example.org.ics",
			want: Info{Kind: KindPersonal, Name: "Mom", Email: "mom@example.org", Category: CategoryPersonal},
		},
		{
			file: "Team_9redshap1f0kiic9ungqjve5b8@group.calendar.google.com.ics",
			want: Info{
				Kind:     KindGroup,
				Name:     "Group Calendar",
				Email:    "Team_9redshap1f0kiic9ungqjve5b8@group.calendar.google.com",
				Category: "Team",
			},
		},
		{
			file: "calendar.ics",
			want: Info{Kind: KindUnknown, Name: "Unknown", Email: "Unknown", Category: "Unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.file))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "personal", KindPersonal.String())
	assert.Equal(t, "group", KindGroup.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
