package locale

var zhTW = Catalog{
	Tag: "zh-TW",
	Labels: Labels{
		Bind:        "綁定資料",
		Recent:      "近期課程",
		Enrollments: "已選課程",
		Profile:     "我的資料",
		Help:        "幫助",
		CheckIn:     "簽到",
		Confirm:     "是的，我是",
		Decline:     "我只是路過的",
	},
	Menu: Menu{
		Bind:        "綁定資料",
		Recent:      "近期課程",
		Enrollments: "已選課程",
		Profile:     "我的資料",
		Help:        "指令清單",
		CheckIn:     "課程簽到",
	},
	Weekdays: [7]string{"一", "二", "三", "四", "五", "六", "日"},
	Pending:  "待定",
	Unset:    "未設定",
	Msg: Messages{
		IdentityPrompt: "👋 歡迎使用！請問您是否為「護理相關人員」或「本計畫學員」？",
		IdentityRetry:  "請點選下方的按鈕來確認您的身分喔！👇",
		AskEmail:       "太好了！🎉\n\n接下來請輸入您的 「Email」 以進行綁定：\n(我們將會寄送課程資訊給您)",
		OptOut:         "沒問題！您依舊可以透過「近期課程」指令了解最新課程資訊哦。😊",
		EmailTaken:     "這個 Email 已經有人使用囉！請換一個。",
		EmailInvalid:   "Email 格式看起來不太對喔，請再檢查一下",
		AskName:        "收到！📧\n接下來，請輸入您於報名系統填入的 「真實姓名」：",
		NameInvalid:    "姓名不能是空白或指令喔，請重新輸入您的 「真實姓名」：",
		AskDeptFormat:  "你好，%s！\n最後一步，請輸入您的 「服務單位」 或 「科系」：",
		DeptInvalid:    "服務單位不能是空白或指令喔，請重新輸入您的 「服務單位」 或 「科系」：",
		Completed:      "🎉 恭喜！綁定完成！\n\n您可以輸入指令，開始使用以下功能：1.「近期課程」2.「已選課程」3.「我的資料」",
		AlreadyBound:   "您已經綁定過了喔！輸入「我的資料」即可查看綁定內容。",
		BindFirst:      "歡迎！請先輸入「綁定資料」來註冊您的帳號。",
		HelpHint:       "您可以輸入「幫助」查看可使用的指令哦！",
		HelpHeader:     "指令清單：",
		HelpItemFormat: "%d.「%s」",

		NoUpcoming:        "目前沒有即將進行的課程喔！😅",
		CourseListHeader:  "📋 近期課程一覽：\n----------------------\n",
		CourseLineFormat:  "🔹 %s\n   (週%s %s)\n",
		CourseEndsFormat:  "   ~ 至 %s 截止\n",
		CalendarFormat:    "\n📅 查看完整行事曆：\n%s",
		ProfileFormat:     "您的綁定資料：\n\n姓名: %s\nEmail: %s\n身分: %s",
		NoEnrollments:     "您目前還沒有選修任何課程喔！📚",
		ScheduleHeader:    "🗓️ 您的課表：\n",
		ScheduleDayFormat: "\n【週%s】\n",
		ScheduleLineFmt:   "   %s %s\n",

		RosterAskEmail:       "請輸入您報名時使用的 Email 以進行綁定。",
		RosterGreetingFormat: "綁定成功！%s 您好 👋\n\n",
		CourseNamesHeader:    "您報名的課程：\n",
		CourseNameFormat:     "・%s\n",
		EmailNotFound:        "查無此 Email，請確認是否為報名時使用的信箱。",
		CheckInDoneFormat:    "✅ 簽到成功！共 %d 堂課完成簽到。",
		NothingToCheckIn:     "目前沒有需要簽到的課程喔！",
		CheckInBindFirst:     "請先完成綁定再簽到喔！",
		InternalError:        "系統忙碌中，請稍後再試一次 🙏",
	},
}
