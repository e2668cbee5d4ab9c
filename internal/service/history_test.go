package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fair-draw-service/internal/domain"
)

const sampleHistory = "番号,名前,指名済,音ON,自動保存ON,クラス名,k,l,n\n" +
	"1,Aiko,True,False,True,2-B,3,2,3\n" +
	"2,Ren,false,false,true,2-B,3,2,3\n" +
	"3,Sora,1,0,1,2-B,3,2,3\n"

func TestDecodeHistory(t *testing.T) {
	t.Parallel()
	records, err := DecodeHistory(strings.NewReader("\ufeff" + sampleHistory))
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, domain.HistoryRecord{
		Number: 1, Name: "Aiko", Called: true, AutoSave: true,
		ClassName: "2-B", K: 3, L: 2, N: 3,
	}, records[0])
	require.False(t, records[1].Called)
	require.True(t, records[2].Called)
}

func TestDecodeHistoryOptionalColumns(t *testing.T) {
	t.Parallel()
	records, err := DecodeHistory(strings.NewReader("n,l,k,名前,番号\n2,1,4,Aiko,1\n"))
	require.NoError(t, err)
	require.Equal(t, []domain.HistoryRecord{{Number: 1, Name: "Aiko", K: 4, L: 1, N: 2}}, records)
}

func TestDecodeHistoryMalformed(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"empty":          "",
		"header only":    "番号,名前,k,l,n\n",
		"missing column": "番号,名前,k,l\n1,Aiko,1,1\n",
		"non numeric k":  "番号,名前,k,l,n\n1,Aiko,x,1,1\n",
		"unknown bool":   "番号,名前,指名済,k,l,n\n1,Aiko,maybe,1,1,1\n",
		"short row":      "番号,名前,k,l,n\n1,Aiko,1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeHistory(strings.NewReader(input))
			require.ErrorIs(t, err, domain.ErrMalformedRecord)
		})
	}
}

func TestRebuildState(t *testing.T) {
	t.Parallel()
	records := []domain.HistoryRecord{
		{Number: 3, Name: "Sora", Called: true, K: 3, L: 2, N: 4, SoundOn: true},
		{Number: 1, Name: " Aiko ", K: 3, L: 2, N: 4},
		{Number: 2, Name: "Ren", Called: true, K: 3, L: 2, N: 4},
	}
	class, err := RebuildState(records)
	require.NoError(t, err)
	require.Equal(t, domain.Params{K: 3, L: 2, N: 4}, class.Params)
	require.Equal(t, []string{"Aiko", "Ren", "Sora", "名前4"}, class.Names)
	require.Equal(t, []int{1, 2}, class.Used)
	require.True(t, class.Settings.SoundOn)
	require.Empty(t, class.Name)
}

func TestRebuildStateRejectsInconsistentRecords(t *testing.T) {
	t.Parallel()
	cases := map[string][]domain.HistoryRecord{
		"no records":     nil,
		"zero n":         {{Number: 1, K: 1, L: 1, N: 0}},
		"differing k":    {{Number: 1, K: 1, L: 1, N: 2}, {Number: 2, K: 2, L: 1, N: 2}},
		"number too big": {{Number: 3, K: 1, L: 1, N: 2}},
		"number zero":    {{Number: 0, K: 1, L: 1, N: 2}},
		"duplicate":      {{Number: 1, K: 1, L: 1, N: 2}, {Number: 1, K: 1, L: 1, N: 2}},
		"roster too big": {{Number: 1, K: 1, L: 1, N: MaxRosterSize + 1}},
	}
	for name, records := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := RebuildState(records)
			require.ErrorIs(t, err, domain.ErrMalformedRecord)
		})
	}
}

func TestEncodeHistoryRoundTrip(t *testing.T) {
	t.Parallel()
	records := []domain.HistoryRecord{
		{Number: 1, Name: "Aiko, Jr.", Called: true, SoundOn: true, ClassName: "1-A", K: 2, L: 1, N: 2},
		{Number: 2, Name: "Ren", ClassName: "1-A", K: 2, L: 1, N: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeHistory(&buf, records))
	require.True(t, strings.HasPrefix(buf.String(), "番号,名前,指名済,音ON,自動保存ON,クラス名,k,l,n\n"))
	require.Contains(t, buf.String(), "1,\"Aiko, Jr.\",True,True,False,1-A,2,1,2\n")

	decoded, err := DecodeHistory(&buf)
	require.NoError(t, err)
	require.Equal(t, records, decoded)
}

func TestService_ImportHistoryIntoRequestedClass(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var (
		saved    domain.Class
		replaced []int
	)
	fake := &fakeRepo{
		saveRosterFn: func(ctx context.Context, class domain.Class) error {
			saved = class
			return nil
		},
		replaceDrawsFn: func(ctx context.Context, name string, used []int) error {
			require.Equal(t, "A", name)
			replaced = used
			return nil
		},
	}
	svc := restoredService(t, fake)

	view, err := svc.ImportHistory(ctx, "A", strings.NewReader(sampleHistory))
	require.NoError(t, err)
	require.Equal(t, "A", view.Class.Name)
	require.Equal(t, []string{"Aiko", "Ren", "Sora"}, view.Class.Names)
	require.Equal(t, []int{0, 2}, view.Class.Used)
	require.Equal(t, domain.StateDrawing, view.State)

	stats, err := svc.Stats(ctx, "A")
	require.NoError(t, err)
	var remaining int
	for _, stat := range stats.PerSlot {
		remaining += max(stat.Planned-stat.Called, 0)
	}
	require.Equal(t, remaining, view.Remaining)

	require.Equal(t, "A", saved.Name)
	require.True(t, saved.Prepared)
	require.True(t, saved.Settings.AutoSave)
	require.Equal(t, []int{0, 2}, replaced)
}

func TestService_ImportMalformedLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := restoredService(t, &fakeRepo{
		saveRosterFn: func(ctx context.Context, class domain.Class) error {
			t.Fatal("roster must not be saved")
			return nil
		},
	})
	before, err := svc.GetRoster(ctx, "A")
	require.NoError(t, err)

	_, err = svc.ImportHistory(ctx, "A", strings.NewReader("番号,名前,k,l,n\n1,Aiko,1,1,1\n1,Ren,1,1,1\n"))
	require.ErrorIs(t, err, domain.ErrMalformedRecord)

	after, err := svc.GetRoster(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestService_ExportHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := restoredService(t, &fakeRepo{})
	_, err := svc.PreparePlan(ctx, "B")
	require.NoError(t, err)
	result, err := svc.Draw(ctx, DrawInput{ClassName: "B"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportHistory(ctx, "B", &buf))

	records, err := DecodeHistory(&buf)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		require.Equal(t, "B", rec.ClassName)
		require.Equal(t, rec.Number == result.Number, rec.Called)
	}

	require.ErrorIs(t, svc.ExportHistory(ctx, "ghost", &buf), domain.ErrClassNotFound)
}

func TestService_ImportRejectsCallsOutsideThePool(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := restoredService(t, &fakeRepo{
		saveRosterFn: func(ctx context.Context, class domain.Class) error {
			t.Fatal("roster must not be saved")
			return nil
		},
	})
	// k*l=1: в пуле одна запись, двое вызванных в него не помещаются
	history := "番号,名前,指名済,k,l,n\n1,Aiko,True,1,1,2\n2,Ren,True,1,1,2\n"

	_, err := svc.ImportHistory(ctx, "A", strings.NewReader(history))
	require.ErrorIs(t, err, domain.ErrMalformedRecord)

	view, err := svc.GetRoster(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, domain.StateUninitialized, view.State)
}
