package i18n

type message struct {
	ar string
	en string
}

// Message ids used by handlers and the error mapper.
const (
	MsgOK                  = "ok"
	MsgCreated             = "created"
	MsgUpdated             = "updated"
	MsgDeleted             = "deleted"
	MsgInvalidRequest      = "invalid_request"
	MsgValidationFailed    = "validation_failed"
	MsgUnauthorized        = "unauthorized"
	MsgForbidden           = "forbidden"
	MsgNotFound            = "not_found"
	MsgConflict            = "conflict"
	MsgInternal            = "internal_error"
	MsgRateLimited         = "rate_limited"
	MsgSessionExpired      = "session_expired"
	MsgQuotaExceeded       = "quota_exceeded"
	MsgInvalidState        = "invalid_state"
	MsgUpstream            = "upstream_failure"
	MsgLoginSuccess        = "login_success"
	MsgLogoutSuccess       = "logout_success"
	MsgRegistered          = "registered"
	MsgInvalidCredentials  = "invalid_credentials"
	MsgEmailTaken          = "email_taken"
	MsgLocationUnavailable = "location_unavailable"
	MsgBookingCreated      = "booking_created"
	MsgBookingApproved     = "booking_approved"
	MsgBookingRejected     = "booking_rejected"
	MsgBookingCancelled    = "booking_cancelled"
	MsgPriceMismatch       = "price_mismatch"
	MsgSubscriptionActive  = "subscription_activated"
	MsgSubscriptionPending = "subscription_pending_payment"
	MsgSubscriptionCancel  = "subscription_cancelled"
	MsgPaymentProcessed    = "payment_processed"
	MsgAnalysisFailed      = "analysis_failed"
	MsgAnalysisCompleted   = "analysis_completed"
	MsgOfferSaved          = "offer_saved"
	MsgOfferUnsaved        = "offer_unsaved"

	// field level
	FieldRequired         = "field_required"
	FieldInvalid          = "field_invalid"
	FieldEmail            = "field_email"
	FieldMin              = "field_min"
	FieldMax              = "field_max"
	FieldOneOf            = "field_oneof"
	FieldDateOrder        = "field_date_order"
	FieldDateInPast       = "field_date_in_past"
	FieldUnknown          = "field_unknown"
	FieldMediaType        = "field_media_type"
	FieldMediaSize        = "field_media_size"
	FieldDurationBounds   = "field_duration_bounds"
	FieldOptionLocation   = "field_option_location"
	FieldLocationInactive = "field_location_inactive"
	FieldRejectReason     = "field_reject_reason"
	FieldPriceMismatch    = "field_price_mismatch"
)

var catalog = map[string]message{
	MsgOK:                  {"تمت العملية بنجاح", "request completed successfully"},
	MsgCreated:             {"تم الإنشاء بنجاح", "created successfully"},
	MsgUpdated:             {"تم التحديث بنجاح", "updated successfully"},
	MsgDeleted:             {"تم الحذف بنجاح", "deleted successfully"},
	MsgInvalidRequest:      {"طلب غير صالح", "invalid request"},
	MsgValidationFailed:    {"يرجى تصحيح الحقول المحددة", "please correct the highlighted fields"},
	MsgUnauthorized:        {"يجب تسجيل الدخول أولاً", "authentication required"},
	MsgForbidden:           {"ليس لديك صلاحية لتنفيذ هذا الإجراء", "you are not allowed to perform this action"},
	MsgNotFound:            {"العنصر المطلوب غير موجود", "the requested resource was not found"},
	MsgConflict:            {"يتعارض الطلب مع بيانات موجودة", "the request conflicts with existing data"},
	MsgInternal:            {"حدث خطأ غير متوقع، يرجى المحاولة لاحقاً", "something went wrong, please try again later"},
	MsgRateLimited:         {"محاولات كثيرة، يرجى الانتظار قليلاً", "too many attempts, please wait"},
	MsgSessionExpired:      {"انتهت الجلسة، يرجى تسجيل الدخول مجدداً", "session expired, please sign in again"},
	MsgQuotaExceeded:       {"لقد وصلت إلى الحد الأقصى المسموح في باقتك", "you have reached your plan limit"},
	MsgInvalidState:        {"لا يمكن تنفيذ الإجراء في الحالة الحالية", "the action is not allowed in the current state"},
	MsgUpstream:            {"تعذر الاتصال بخدمة خارجية", "an external service failed"},
	MsgLoginSuccess:        {"تم تسجيل الدخول بنجاح", "signed in successfully"},
	MsgLogoutSuccess:       {"تم تسجيل الخروج", "signed out"},
	MsgRegistered:          {"تم إنشاء الحساب بنجاح", "account created successfully"},
	MsgInvalidCredentials:  {"البريد الإلكتروني أو كلمة المرور غير صحيحة", "invalid email or password"},
	MsgEmailTaken:          {"البريد الإلكتروني مستخدم مسبقاً", "email is already registered"},
	MsgLocationUnavailable: {"الموقع محجوز في الفترة المطلوبة", "the location is already booked for the requested period"},
	MsgBookingCreated:      {"تم إرسال طلب الحجز وهو قيد المراجعة", "booking submitted and pending review"},
	MsgBookingApproved:     {"تمت الموافقة على الحجز وإصدار الفاتورة", "booking approved and invoice issued"},
	MsgBookingRejected:     {"تم رفض الحجز", "booking rejected"},
	MsgBookingCancelled:    {"تم إلغاء الحجز", "booking cancelled"},
	MsgPriceMismatch:       {"السعر المرسل لا يطابق السعر المحسوب", "submitted price does not match the computed price"},
	MsgSubscriptionActive:  {"تم تفعيل الاشتراك", "subscription activated"},
	MsgSubscriptionPending: {"تم إصدار فاتورة الاشتراك بانتظار الدفع", "subscription invoice issued, awaiting payment"},
	MsgSubscriptionCancel:  {"تم إلغاء الاشتراك", "subscription cancelled"},
	MsgPaymentProcessed:    {"تمت معالجة الدفع", "payment processed"},
	MsgAnalysisFailed:      {"تعذر تحليل العرض، يمكنك إعادة المحاولة", "offer analysis failed, you can retry"},
	MsgAnalysisCompleted:   {"اكتمل تحليل العرض", "offer analysis completed"},
	MsgOfferSaved:          {"تم حفظ العرض", "offer saved"},
	MsgOfferUnsaved:        {"تمت إزالة العرض من المحفوظات", "offer removed from saved"},

	FieldRequired:         {"هذا الحقل مطلوب", "this field is required"},
	FieldInvalid:          {"القيمة غير صالحة", "invalid value"},
	FieldEmail:            {"البريد الإلكتروني غير صالح", "invalid email address"},
	FieldMin:              {"القيمة أقل من الحد الأدنى", "value is below the minimum"},
	FieldMax:              {"القيمة أكبر من الحد الأقصى", "value exceeds the maximum"},
	FieldOneOf:            {"القيمة غير مسموح بها", "value is not one of the allowed options"},
	FieldDateOrder:        {"تاريخ النهاية يجب أن يكون بعد تاريخ البداية", "end date must not be before start date"},
	FieldDateInPast:       {"لا يمكن الحجز بتاريخ سابق", "start date cannot be in the past"},
	FieldUnknown:          {"حقل غير معروف", "unknown field"},
	FieldMediaType:        {"نوع الملف غير مدعوم (JPG أو PNG أو MP4)", "unsupported file type (JPG, PNG or MP4)"},
	FieldMediaSize:        {"حجم الملف أكبر من المسموح", "file is too large"},
	FieldDurationBounds:   {"المدة خارج الحدود المسموحة لخيار التسعير", "duration is outside the pricing option bounds"},
	FieldOptionLocation:   {"خيار التسعير لا يتبع هذا الموقع", "pricing option does not belong to this location"},
	FieldLocationInactive: {"الموقع غير متاح حالياً", "location is not active"},
	FieldRejectReason:     {"يجب ذكر سبب الرفض", "a rejection reason is required"},
	FieldPriceMismatch:    {"السعر لا يطابق السعر المحسوب", "price does not match the computed price"},
}
