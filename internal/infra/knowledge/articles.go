package knowledge

// Articles is the static corpus the context tool searches. Answers to
// general banking questions come from here; deposit operations never do —
// those go through the deposit tools.
var Articles = []Article{
	{
		ID:         101,
		Tags:       []string{"страхование", "осаго", "каско", "автомобиль"},
		Annotation: "Автострахование: обязательное ОСАГО и добровольное КАСКО.",
		Body: `## Что такое ОСАГО
ОСАГО — обязательное страхование автогражданской ответственности. Полис
покрывает ущерб, который водитель причинил другим участникам движения: их
автомобилям, имуществу и здоровью. Собственный автомобиль виновника по
ОСАГО не возмещается. Без действующего полиса эксплуатация автомобиля
запрещена.

## Что такое КАСКО
КАСКО — добровольное страхование собственного автомобиля. Полис покрывает
угон, ущерб от ДТП независимо от виновности, пожар, стихийные бедствия и
действия третьих лиц. Стоимость зависит от марки, возраста автомобиля,
стажа водителя и выбранной франшизы.

## Чем ОСАГО отличается от КАСКО
ОСАГО обязательно и защищает чужое имущество, КАСКО добровольно и защищает
ваш автомобиль. Выплата по ОСАГО идёт пострадавшей стороне, выплата по
КАСКО — владельцу полиса. Для полной защиты полисы обычно оформляют вместе.`,
	},
	{
		ID:         102,
		Tags:       []string{"вклады", "страхование", "асв", "гарантии"},
		Annotation: "Государственное страхование банковских вкладов.",
		Body: `## Как застрахованы вклады
Все вклады физических лиц застрахованы государственной системой
страхования. При отзыве лицензии у банка вкладчику возмещается сумма
вклада вместе с начисленными процентами в пределах установленного лимита
на одного вкладчика в одном банке.

## Что делать при страховом случае
Обращаться в банк-агент, назначенный агентством по страхованию вкладов.
Выплаты начинаются в течение двух недель после наступления страхового
случая; для получения достаточно паспорта и заявления.`,
	},
	{
		ID:         103,
		Tags:       []string{"карта", "кэшбэк", "бонусы"},
		Annotation: "Программа кэшбэка по дебетовым картам.",
		Body: `## Как работает кэшбэк
Кэшбэк — возврат части суммы покупки на карту. Базовая ставка действует на
все покупки, повышенные категории выбираются в приложении каждый месяц.
Начисление происходит до пятого числа следующего месяца.

## Ограничения кэшбэка
Кэшбэк не начисляется на переводы, снятие наличных, оплату коммунальных
услуг и пополнение электронных кошельков. Месячная сумма начислений
ограничена лимитом программы лояльности.`,
	},
	{
		ID:         104,
		Tags:       []string{"переводы", "сбп", "комиссия"},
		Annotation: "Переводы между банками и система быстрых платежей.",
		Body: `## Переводы по номеру телефона
Система быстрых платежей позволяет переводить деньги по номеру телефона в
любой подключённый банк круглосуточно. Переводы в пределах месячного
лимита выполняются без комиссии, зачисление происходит за считанные
секунды.

## Переводы по реквизитам
Перевод по номеру счёта и БИК банка получателя выполняется в течение
одного рабочего дня. Для юридических лиц комиссия рассчитывается по тарифу
обслуживания счёта.`,
	},
	{
		ID:         105,
		Tags:       []string{"карта", "безопасность", "мошенники"},
		Annotation: "Безопасность карты и защита от мошенников.",
		Body: `## Правила безопасности карты
Никому не сообщайте полный номер карты, срок действия, код с обратной
стороны и коды из СМС. Сотрудники банка никогда не запрашивают эти данные.
Подключите уведомления об операциях, чтобы сразу видеть списания.

## Если карта скомпрометирована
Немедленно заблокируйте карту в приложении или по телефону горячей линии.
Оспорить незаконное списание можно в течение суток после уведомления об
операции; банк проводит расследование и возвращает средства при
подтверждении мошенничества.`,
	},
	{
		ID:         106,
		Tags:       []string{"кредит", "ставка", "досрочное погашение"},
		Annotation: "Потребительские кредиты и досрочное погашение.",
		Body: `## Как формируется ставка по кредиту
Ставка зависит от срока, суммы, кредитной истории заёмщика и наличия
страховки. Зарплатным клиентам доступны пониженные ставки. Полная
стоимость кредита указывается в договоре до подписания.

## Досрочное погашение
Кредит можно погасить досрочно полностью или частично в любой момент без
комиссии. При частичном погашении можно сократить срок кредита или
уменьшить ежемесячный платёж — выбор фиксируется в заявлении.`,
	},
}
