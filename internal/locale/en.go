package locale

var en = Catalog{
	Tag: "en",
	Labels: Labels{
		Bind:        "Bind profile",
		Recent:      "Recent courses",
		Enrollments: "My courses",
		Profile:     "My profile",
		Help:        "Help",
		CheckIn:     "Check in",
		Confirm:     "Yes, I am",
		Decline:     "Just passing by",
	},
	Menu: Menu{
		Bind:        "Bind your profile",
		Recent:      "Upcoming courses",
		Enrollments: "Your enrolled courses",
		Profile:     "Your profile",
		Help:        "Command list",
		CheckIn:     "Check in to your courses",
	},
	Weekdays: [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	Pending:  "TBD",
	Unset:    "not set",
	Msg: Messages{
		IdentityPrompt: "👋 Welcome! Are you a nursing professional or a participant of this program?",
		IdentityRetry:  "Please tap one of the buttons below to confirm 👇",
		AskEmail:       "Great! 🎉\n\nPlease send the email address you want to bind:\n(we will send course information there)",
		OptOut:         "No problem! You can still send \"Recent courses\" to see what is coming up. 😊",
		EmailTaken:     "This email is already taken. Please use another one.",
		EmailInvalid:   "That does not look like a valid email address, please check it.",
		AskName:        "Got it! 📧\nNext, please send your full name as registered:",
		NameInvalid:    "Your name cannot be blank or a command. Please send your full name:",
		AskDeptFormat:  "Hello, %s!\nLast step: please send your organisation or department:",
		DeptInvalid:    "The department cannot be blank or a command. Please send your organisation or department:",
		Completed:      "🎉 All set, your profile is bound!\n\nTry these commands: 1. \"Recent courses\" 2. \"My courses\" 3. \"My profile\"",
		AlreadyBound:   "Your profile is already bound. Send \"My profile\" to review it.",
		BindFirst:      "Welcome! Please send \"Bind profile\" to register first.",
		HelpHint:       "Send \"Help\" to see the available commands.",
		HelpHeader:     "Commands: ",
		HelpItemFormat: "%d. \"%s\" ",

		NoUpcoming:        "There are no upcoming courses right now. 😅",
		CourseListHeader:  "📋 Upcoming courses:\n----------------------\n",
		CourseLineFormat:  "🔹 %s\n   (%s %s)\n",
		CourseEndsFormat:  "   ~ until %s\n",
		CalendarFormat:    "\n📅 Full calendar:\n%s",
		ProfileFormat:     "Your profile:\n\nName: %s\nEmail: %s\nIdentity: %s",
		NoEnrollments:     "You are not enrolled in any course yet. 📚",
		ScheduleHeader:    "🗓️ Your timetable:\n",
		ScheduleDayFormat: "\n[%s]\n",
		ScheduleLineFmt:   "   %s %s\n",

		RosterAskEmail:       "Please send the email address you registered with.",
		RosterGreetingFormat: "Bound! Hello %s 👋\n\n",
		CourseNamesHeader:    "Your courses:\n",
		CourseNameFormat:     "- %s\n",
		EmailNotFound:        "Email not found. Please use the address you registered with.",
		CheckInDoneFormat:    "✅ Checked in to %d course(s).",
		NothingToCheckIn:     "Nothing to check in right now.",
		CheckInBindFirst:     "Please bind your profile before checking in.",
		InternalError:        "Something went wrong on our side, please try again later 🙏",
	},
}
