package modlog

import "testing"

func TestModernize(t *testing.T) {
	prefix := "[2014-11-20T13:16:16.524Z] (lobby) "
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"promotion",
			prefix + "([bob] was promoted to Room Driver by [alice].)",
			prefix + "ROOMDRIVER: [bob] by alice",
		},
		{
			"demotion",
			prefix + "([bob] was demoted to Room Voice by [alice].)",
			prefix + "ROOMVOICE: [bob] by alice: (demote)",
		},
		{
			"room owner",
			prefix + "([bob] was appointed Room Owner by [alice].)",
			prefix + "ROOMOWNER: [bob] by alice",
		},
		{
			"modchat",
			prefix + "([alice] set modchat to +)",
			prefix + "MODCHAT: by alice: +",
		},
		{
			"modjoin",
			prefix + "(Alice Smith set modjoin to +)",
			prefix + "MODJOIN: by alicesmith: +",
		},
		{
			"modjoin sync",
			prefix + "(Alice Smith set modjoin to sync)",
			prefix + "MODJOIN SYNC: by alicesmith",
		},
		{
			"notes",
			prefix + "([alice] notes: keep an eye on bob)",
			prefix + "NOTE: by alice: keep an eye on bob",
		},
		{
			"roomintro",
			prefix + "([alice] changed the roomintro.)",
			prefix + "ROOMINTRO: by alice",
		},
		{
			"staffintro",
			prefix + "([alice] changed the staffintro.)",
			prefix + "STAFFINTRO: by alice",
		},
		{
			"delete roomintro",
			prefix + "([alice] deleted the roomintro.)",
			prefix + "DELETEROOMINTRO: by alice",
		},
		{
			"delete staffintro",
			prefix + "([alice] delete the staffintro.)",
			prefix + "STAFFINTRODELETE: by alice",
		},
		{
			"roomdesc",
			prefix + `([alice] changed the roomdesc to: "A place to chat.".)`,
			prefix + `ROOMDESC: by alice: to "A place to chat."`,
		},
		{
			"declare",
			prefix + "(Alice Smith declared Tournament starting soon!)",
			prefix + "DECLARE: by alicesmith: Tournament starting soon!",
		},
		{
			"roomevent added",
			prefix + `(Alice Smith added a roomevent titled "Game Night".)`,
			prefix + `ROOMEVENT: by alicesmith: added "Game Night"`,
		},
		{
			"roomevent removed",
			prefix + `(Alice Smith removed a roomevent titled "Game Night".)`,
			prefix + `ROOMEVENT: by alicesmith: removed "Game Night"`,
		},
		{
			"tournament",
			prefix + "([sirdonovan] created a tournament in randombattle format.)",
			prefix + "TOUR CREATE: by sirdonovan: randombattle",
		},
		{
			"canonical passes through",
			prefix + "MUTE: [bob] by alice: spamming",
			prefix + "MUTE: [bob] by alice: spamming",
		},
		{
			"unknown phrasing passes through",
			prefix + "(something nobody ever logged)",
			prefix + "(something nobody ever logged)",
		},
		{
			"no prefix passes through",
			"free text without a timestamp",
			"free text without a timestamp",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Modernize(tc.in); got != tc.want {
				t.Fatalf("Modernize(%q)\n got %q\nwant %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestModernizeThenParse(t *testing.T) {
	line := "[2014-11-20T13:16:16.524Z] (lobby) ([bob] was promoted to Room Driver by [alice].)"
	rec, err := ParseLine(Modernize(line), false)
	if err != nil {
		t.Fatalf("parse modernized line: %v", err)
	}
	if rec.Action != "ROOMDRIVER" || rec.UserID != "bob" || rec.ActionTakerID != "alice" {
		t.Fatalf("parsed %+v, want ROOMDRIVER/[bob]/alice", *rec)
	}
}
